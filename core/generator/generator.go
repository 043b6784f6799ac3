package generator

import "context"

// Generator is a text generation backend reached through a synchronous
// request/response call.
type Generator interface {
	// Generate returns the completion for prompt. Failures wrap ErrUnavailable
	// or ErrTimeout, or are a *StatusError.
	Generate(ctx context.Context, prompt string) (string, error)
	// Models lists the models available on the backend.
	Models(ctx context.Context) ([]string, error)
}
