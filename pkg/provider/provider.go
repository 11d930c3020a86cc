// Package provider abstracts the text-completion backend used by the
// generation pipeline. The rest of the system only ever sees a typed
// response or a well-defined error; raw model output never leaks past
// this boundary.
package provider

import "context"

// Options tune a single completion request.
type Options struct {
	Temperature float64
	MaxTokens   int
	System      string
}

// Provider is the completion backend contract. Generate may fail; callers
// are expected to recover with deterministic fallbacks. Implementations
// honor context cancellation and apply their own retry and model-fallback
// policy internally, eventually returning an error rather than hanging.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	HealthCheck(ctx context.Context) error
}
