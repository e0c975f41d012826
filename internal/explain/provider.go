package explain

import "context"

// Provider turns a prompt into a free-form rationale.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Generate submits the prompt and returns the raw model response.
	Generate(ctx context.Context, prompt string) (string, error)
}
