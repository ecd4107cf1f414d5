package narrative

import "context"

// Generator turns a prompt into free narrative text. Output is untrusted:
// callers must run it through the effects extraction pipeline before
// mutating any game state.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
