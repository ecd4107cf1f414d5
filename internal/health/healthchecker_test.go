package health

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type staticChecker struct {
	name    string
	healthy bool
}

func (s *staticChecker) Name() string                                      { return s.name }
func (s *staticChecker) IsHealthy() bool                                   { return s.healthy }
func (s *staticChecker) Start(ctx context.Context, interval time.Duration) {}

func TestServiceHealth_AllHealthy(t *testing.T) {
	svc := NewServiceHealthChecker(zerolog.Nop(),
		&staticChecker{name: "a", healthy: true},
		&staticChecker{name: "b", healthy: true},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx, 10*time.Millisecond)
	defer cancel()

	deadline := time.Now().Add(time.Second)
	for !svc.IsHealthy() {
		if time.Now().After(deadline) {
			t.Fatal("service never became healthy")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServiceHealth_OneUnhealthy(t *testing.T) {
	svc := NewServiceHealthChecker(zerolog.Nop(),
		&staticChecker{name: "a", healthy: true},
		&staticChecker{name: "b", healthy: false},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx, 10*time.Millisecond)
	defer cancel()

	time.Sleep(50 * time.Millisecond)
	if svc.IsHealthy() {
		t.Fatal("service should be unhealthy while a dependency is down")
	}
}
