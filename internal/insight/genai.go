package insight

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"
)

// GenAI generates text with Google's Gemini API.
type GenAI struct {
	client *genai.Client
}

// GenAIOption adjusts the Gemini client configuration.
type GenAIOption func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint, such as a proxy.
func WithBaseURL(url string) GenAIOption {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) GenAIOption {
	return func(c *genai.ClientConfig) { c.HTTPClient = hc }
}

// NewGenAI creates a Gemini-backed generator.
func NewGenAI(ctx context.Context, apiKey string, opts ...GenAIOption) (*GenAI, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("insight: create genai client: %w", err)
	}
	return &GenAI{client: client}, nil
}

// Generate sends one GenerateContent request and returns the response text.
func (g *GenAI) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.MaxOutputTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("insight: generate content: %w", err)
	}
	return resp.Text(), nil
}

// NewGenerator returns the Gemini generator for apiKey, or an Unavailable
// generator when the key is empty or the client cannot be built. Every call
// on the latter fails and is masked by fallback text.
func NewGenerator(ctx context.Context, apiKey string, logger *slog.Logger, opts ...GenAIOption) Generator {
	g, err := NewGenAI(ctx, apiKey, opts...)
	if err != nil {
		logger.Warn("insight provider unavailable, responses will use fallback text",
			slog.String("error", err.Error()))
		return Unavailable{Err: err}
	}
	return g
}
