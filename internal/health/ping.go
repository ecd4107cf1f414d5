package health

import "context"

// HealthPinger is optionally implemented by a dependency to expose a
// specialized probe. Returns nil when healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
