// Package insight turns journal content and mood labels into short
// generated texts. Every provider failure is converted into a fixed
// fallback text, so callers always receive a non-empty string.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/metrics"
	"github.com/starford/solace/internal/models"
	"github.com/starford/solace/internal/prompts"
)

// Operation names, also used as metric labels.
const (
	OpSummarize = "summarize"
	OpRecommend = "recommend"
)

// Outcome distinguishes provider-generated text from fallback text.
type Outcome int

const (
	OutcomeGenerated Outcome = iota
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "generated"
}

// Result is the outcome of one insight request. Text is never empty.
// Cause is set when Outcome is OutcomeFallback.
type Result struct {
	Text    string
	Outcome Outcome
	Cause   error
}

// Fallback reports whether Text is the fixed fallback.
func (r Result) Fallback() bool {
	return r.Outcome == OutcomeFallback
}

// Params are the generation parameters of one operation.
type Params struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Config controls how requests are built.
type Config struct {
	Model string
	// MaxContentRunes caps journal content before it is embedded in the
	// prompt. Zero disables the cap.
	MaxContentRunes int
	// Timeout bounds a single provider call. Zero disables it.
	Timeout        time.Duration
	Summary        Params
	Recommendation Params
}

// DefaultConfig mirrors the parameters the mobile client was tuned with.
func DefaultConfig() Config {
	return Config{
		Model:           "gemini-3-flash-preview",
		MaxContentRunes: 4000,
		Timeout:         30 * time.Second,
		Summary:         Params{Temperature: 0.7, MaxOutputTokens: 150},
		Recommendation:  Params{Temperature: 0.8},
	}
}

// PromptSource provides the active prompt catalogue.
type PromptSource interface {
	Current() *prompts.Set
}

type staticPrompts struct{ set *prompts.Set }

func (s staticPrompts) Current() *prompts.Set { return s.set }

// Option configures a Service.
type Option func(*Service)

// WithPrompts sets the prompt source. Defaults to the built-in catalogue.
func WithPrompts(src PromptSource) Option {
	return func(s *Service) { s.prompts = src }
}

// WithLimiter throttles outbound provider calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithMetrics records request outcomes.
func WithMetrics(m *metrics.Insight) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is the journal insight service. It is safe for concurrent use.
type Service struct {
	gen     Generator
	cfg     Config
	prompts PromptSource
	limiter *rate.Limiter
	metrics *metrics.Insight
	logger  *slog.Logger
}

// NewService creates a Service calling gen.
func NewService(gen Generator, cfg Config, opts ...Option) *Service {
	s := &Service{
		gen:     gen,
		cfg:     cfg,
		prompts: staticPrompts{set: prompts.Default()},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a short supportive summary of content, or the summary
// fallback text when generation fails.
func (s *Service) Summarize(ctx context.Context, content string) string {
	return s.SummarizeResult(ctx, content).Text
}

// SummarizeResult is Summarize with the outcome exposed.
func (s *Service) SummarizeResult(ctx context.Context, content string) Result {
	start := time.Now()
	tmpl := s.prompts.Current()
	fallback := tmpl.Summarize.Fallback

	content = strings.TrimSpace(content)
	if content == "" {
		return s.fallback(OpSummarize, fallback, apperr.ErrEmptyContent, start)
	}
	content = truncateRunes(content, s.cfg.MaxContentRunes)

	prompt, err := tmpl.SummaryPrompt(content)
	if err != nil {
		return s.fallback(OpSummarize, fallback, err, start)
	}
	return s.generate(ctx, OpSummarize, prompt, s.cfg.Summary, fallback, start)
}

// Recommend returns a short wellness suggestion for mood, or the
// recommendation fallback text when generation fails.
func (s *Service) Recommend(ctx context.Context, mood models.Mood) string {
	return s.RecommendResult(ctx, mood).Text
}

// RecommendResult is Recommend with the outcome exposed.
func (s *Service) RecommendResult(ctx context.Context, mood models.Mood) Result {
	start := time.Now()
	tmpl := s.prompts.Current()
	fallback := tmpl.Recommend.Fallback

	if err := mood.Validate(); err != nil {
		return s.fallback(OpRecommend, fallback, fmt.Errorf("%w: %q", apperr.ErrInvalidMood, mood), start)
	}

	prompt, err := tmpl.RecommendationPrompt(mood)
	if err != nil {
		return s.fallback(OpRecommend, fallback, err, start)
	}
	return s.generate(ctx, OpRecommend, prompt, s.cfg.Recommendation, fallback, start)
}

func (s *Service) generate(ctx context.Context, op, prompt string, p Params, fallback string, start time.Time) Result {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return s.fallback(op, fallback, fmt.Errorf("insight: rate limit wait: %w", err), start)
		}
	}

	text, err := s.gen.Generate(ctx, Request{
		Model:           s.cfg.Model,
		Prompt:          prompt,
		Temperature:     p.Temperature,
		MaxOutputTokens: p.MaxOutputTokens,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		return s.fallback(op, fallback, err, start)
	}

	s.metrics.Observe(op, OutcomeGenerated.String(), time.Since(start))
	return Result{Text: text, Outcome: OutcomeGenerated}
}

func (s *Service) fallback(op, text string, cause error, start time.Time) Result {
	level := slog.LevelWarn
	if errors.Is(cause, apperr.ErrEmptyContent) || errors.Is(cause, apperr.ErrInvalidMood) {
		level = slog.LevelDebug
	}
	s.logger.Log(context.Background(), level, "insight request failed, using fallback",
		slog.String("operation", op),
		slog.String("error", cause.Error()))

	s.metrics.Observe(op, OutcomeFallback.String(), time.Since(start))
	return Result{Text: text, Outcome: OutcomeFallback, Cause: cause}
}

// truncateRunes returns s cut to at most n runes. n <= 0 disables the cap.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
