package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/models"
	"github.com/starford/solace/internal/prompts"
)

const (
	summaryFallback   = "Your feelings are valid. Take a moment to breathe deeply."
	recommendFallback = "Try a 5-minute deep breathing exercise."
)

// recorder is a Generator that records requests and answers with reply/err.
type recorder struct {
	mu    sync.Mutex
	calls []Request
	reply string
	err   error
}

func (r *recorder) Generate(_ context.Context, req Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	return r.reply, r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestService(gen Generator, opts ...Option) *Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewService(gen, DefaultConfig(), append([]Option{WithLogger(logger)}, opts...)...)
}

func TestSummarize_ProviderFailureReturnsFallback(t *testing.T) {
	svc := newTestService(&recorder{err: errors.New("network unreachable")})

	got := svc.Summarize(context.Background(), "I feel overwhelmed by exams")
	if got != summaryFallback {
		t.Errorf("Summarize = %q, want %q", got, summaryFallback)
	}
}

func TestRecommend_ProviderFailureReturnsFallback(t *testing.T) {
	svc := newTestService(&recorder{err: errors.New("403 permission denied")})

	got := svc.Recommend(context.Background(), models.MoodAnxious)
	if got != recommendFallback {
		t.Errorf("Recommend = %q, want %q", got, recommendFallback)
	}
}

func TestSummarize_Success(t *testing.T) {
	gen := &recorder{reply: "You are carrying a lot right now. Rest is part of studying well."}
	svc := newTestService(gen)

	res := svc.SummarizeResult(context.Background(), "I feel overwhelmed by exams")
	if res.Fallback() {
		t.Fatalf("unexpected fallback: %v", res.Cause)
	}
	if res.Text != gen.reply {
		t.Errorf("text = %q, want verbatim provider text", res.Text)
	}

	req := gen.calls[0]
	if req.Model != "gemini-3-flash-preview" {
		t.Errorf("model = %q", req.Model)
	}
	if req.Temperature != 0.7 || req.MaxOutputTokens != 150 {
		t.Errorf("params = %v/%d, want 0.7/150", req.Temperature, req.MaxOutputTokens)
	}
	if !strings.Contains(req.Prompt, `"I feel overwhelmed by exams"`) {
		t.Errorf("prompt does not embed content: %q", req.Prompt)
	}
}

func TestRecommend_SuccessForAllMoods(t *testing.T) {
	gen := &recorder{reply: "Take a slow walk outside."}
	svc := newTestService(gen)

	for _, m := range models.Moods {
		res := svc.RecommendResult(context.Background(), m)
		if res.Fallback() || res.Text == "" {
			t.Errorf("mood %s: result = %+v", m, res)
		}
	}
	for i, req := range gen.calls {
		if req.Temperature != 0.8 {
			t.Errorf("call %d temperature = %v, want 0.8", i, req.Temperature)
		}
		if req.MaxOutputTokens != 0 {
			t.Errorf("call %d max tokens = %d, want unset", i, req.MaxOutputTokens)
		}
		if !strings.Contains(req.Prompt, "feeling "+string(models.Moods[i])+" today") {
			t.Errorf("call %d prompt = %q", i, req.Prompt)
		}
	}
}

func TestRecommend_FailureForAllMoods(t *testing.T) {
	svc := newTestService(Unavailable{})
	for _, m := range models.Moods {
		if got := svc.Recommend(context.Background(), m); got != recommendFallback {
			t.Errorf("mood %s: got %q", m, got)
		}
	}
}

func TestSummarize_EmptyContentNotSent(t *testing.T) {
	gen := &recorder{reply: "should not be used"}
	svc := newTestService(gen)

	res := svc.SummarizeResult(context.Background(), "   \n\t")
	if !res.Fallback() || res.Text != summaryFallback {
		t.Fatalf("result = %+v", res)
	}
	if !errors.Is(res.Cause, apperr.ErrEmptyContent) {
		t.Errorf("cause = %v, want ErrEmptyContent", res.Cause)
	}
	if gen.count() != 0 {
		t.Errorf("provider called %d times for empty content", gen.count())
	}
}

func TestRecommend_InvalidMoodNotSent(t *testing.T) {
	gen := &recorder{reply: "should not be used"}
	svc := newTestService(gen)

	res := svc.RecommendResult(context.Background(), models.Mood("ecstatic"))
	if !errors.Is(res.Cause, apperr.ErrInvalidMood) {
		t.Errorf("cause = %v, want ErrInvalidMood", res.Cause)
	}
	if res.Text != recommendFallback {
		t.Errorf("text = %q", res.Text)
	}
	if gen.count() != 0 {
		t.Error("provider called for invalid mood")
	}
}

func TestSummarize_EmptyProviderTextIsFailure(t *testing.T) {
	svc := newTestService(&recorder{reply: "  \n"})

	res := svc.SummarizeResult(context.Background(), "a quiet day")
	if !errors.Is(res.Cause, ErrEmptyResponse) {
		t.Errorf("cause = %v, want ErrEmptyResponse", res.Cause)
	}
	if res.Text != summaryFallback {
		t.Errorf("text = %q", res.Text)
	}
}

func TestSummarize_CapsContent(t *testing.T) {
	gen := &recorder{reply: "ok"}
	cfg := DefaultConfig()
	cfg.MaxContentRunes = 10
	svc := NewService(gen, cfg, WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))

	svc.Summarize(context.Background(), strings.Repeat("é", 50))

	prompt := gen.calls[0].Prompt
	if !strings.Contains(prompt, `"`+strings.Repeat("é", 10)+`"`) {
		t.Errorf("content not capped at 10 runes: %q", prompt)
	}
	if !utf8.ValidString(prompt) {
		t.Error("capped prompt is not valid UTF-8")
	}
}

func TestSummarize_TimeoutReturnsFallback(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewService(gen, cfg, WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))

	res := svc.SummarizeResult(context.Background(), "stuck")
	if !errors.Is(res.Cause, context.DeadlineExceeded) {
		t.Errorf("cause = %v, want deadline exceeded", res.Cause)
	}
	if res.Text != summaryFallback {
		t.Errorf("text = %q", res.Text)
	}
}

func TestRecommend_LimiterCancelledReturnsFallback(t *testing.T) {
	gen := &recorder{reply: "Stretch for a minute."}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	svc := newTestService(gen, WithLimiter(limiter))

	if res := svc.RecommendResult(context.Background(), models.MoodHappy); res.Fallback() {
		t.Fatalf("first call should use the burst token: %v", res.Cause)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := svc.RecommendResult(ctx, models.MoodHappy)
	if !res.Fallback() || res.Text != recommendFallback {
		t.Errorf("second call = %+v, want fallback", res)
	}
	if gen.count() != 1 {
		t.Errorf("provider calls = %d, want 1", gen.count())
	}
}

func TestService_UsesPromptSource(t *testing.T) {
	set := prompts.Default()
	set.Recommend.Fallback = "Drink a glass of water."
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}
	svc := newTestService(Unavailable{}, WithPrompts(staticPrompts{set: set}))

	if got := svc.Recommend(context.Background(), models.MoodSad); got != "Drink a glass of water." {
		t.Errorf("Recommend = %q", got)
	}
}

func TestUnavailable_DefaultError(t *testing.T) {
	_, err := Unavailable{}.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
}

func TestNewGenerator_EmptyKey(t *testing.T) {
	gen := NewGenerator(context.Background(), "", slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if _, ok := gen.(Unavailable); !ok {
		t.Fatalf("generator = %T, want Unavailable", gen)
	}
	svc := newTestService(gen)
	if got := svc.Summarize(context.Background(), "hello"); got != summaryFallback {
		t.Errorf("Summarize = %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("truncateRunes = %q", got)
	}
	if got := truncateRunes("hi", 0); got != "hi" {
		t.Errorf("zero cap should disable: %q", got)
	}
	if got := truncateRunes("hi", 5); got != "hi" {
		t.Errorf("short input changed: %q", got)
	}
}
