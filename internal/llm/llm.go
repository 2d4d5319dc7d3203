// Package llm hides text generation backends behind one interface.
package llm

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single generation call when the config sets none.
const DefaultTimeout = 120 * time.Second

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Request is one generation call.
type Request struct {
	// Step names the production step issuing the call ("theme", "script", ...).
	Step   string
	System string
	Prompt string
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f(ctx, req).
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
