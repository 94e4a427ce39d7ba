package insight

import (
	"context"
	"errors"
)

// ErrNoCredential is returned by Unavailable when no API key was configured.
var ErrNoCredential = errors.New("insight: provider credential is empty")

// ErrEmptyResponse is returned when the provider answers with no text.
var ErrEmptyResponse = errors.New("insight: provider returned empty text")

// Request is one single-shot generation call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float32
	// MaxOutputTokens caps the generated length; zero leaves it to the provider.
	MaxOutputTokens int32
}

// Generator is the outbound text-generation provider.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Unavailable is a Generator whose every call fails with Err.
type Unavailable struct {
	Err error
}

// Generate returns u.Err.
func (u Unavailable) Generate(context.Context, Request) (string, error) {
	if u.Err == nil {
		return "", ErrNoCredential
	}
	return "", u.Err
}
