package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/starford/solace/internal/models"
)

// geminiRequest is the part of a generateContent body the tests inspect.
type geminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig"`
}

type capturedCall struct {
	path   string
	apiKey string
	body   geminiRequest
}

// fakeGemini serves generateContent with a fixed JSON response body.
type fakeGemini struct {
	mu       sync.Mutex
	calls    []capturedCall
	status   int
	response string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body geminiRequest
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls = append(f.calls, capturedCall{path: r.URL.Path, apiKey: r.Header.Get("x-goog-api-key"), body: body})
	status, response := f.status, f.response
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = io.WriteString(w, response)
}

func (f *fakeGemini) lastCall(t *testing.T) capturedCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no request reached the provider")
	}
	return f.calls[len(f.calls)-1]
}

func textResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
		}},
	})
	return string(b)
}

func newGenAIService(t *testing.T, f *fakeGemini) *Service {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	gen, err := NewGenAI(context.Background(), "test-key", WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewGenAI: %v", err)
	}
	return newTestService(gen)
}

func floatNear(v any, want float64) bool {
	f, ok := v.(float64)
	return ok && math.Abs(f-want) < 1e-3
}

func TestGenAI_SummaryRequestOnTheWire(t *testing.T) {
	f := &fakeGemini{response: textResponse("Exams are heavy; you are pacing yourself.")}
	svc := newGenAIService(t, f)

	res := svc.SummarizeResult(context.Background(), "I feel overwhelmed by exams")
	if res.Fallback() || res.Text != "Exams are heavy; you are pacing yourself." {
		t.Fatalf("result = %+v", res)
	}

	call := f.lastCall(t)
	if want := "models/" + DefaultConfig().Model + ":generateContent"; !strings.HasSuffix(call.path, want) {
		t.Errorf("path = %q, want suffix %q", call.path, want)
	}
	if call.apiKey != "test-key" {
		t.Errorf("api key header = %q", call.apiKey)
	}
	if len(call.body.Contents) != 1 || len(call.body.Contents[0].Parts) != 1 ||
		!strings.Contains(call.body.Contents[0].Parts[0].Text, "I feel overwhelmed by exams") {
		t.Errorf("contents = %+v", call.body.Contents)
	}
	gc := call.body.GenerationConfig
	if !floatNear(gc["temperature"], 0.7) {
		t.Errorf("temperature = %v, want 0.7", gc["temperature"])
	}
	if !floatNear(gc["maxOutputTokens"], 150) {
		t.Errorf("maxOutputTokens = %v, want 150", gc["maxOutputTokens"])
	}
}

func TestGenAI_RecommendationRequestOnTheWire(t *testing.T) {
	f := &fakeGemini{response: textResponse("Step outside for ten minutes of fresh air.")}
	svc := newGenAIService(t, f)

	if got := svc.Recommend(context.Background(), models.MoodSad); got != "Step outside for ten minutes of fresh air." {
		t.Fatalf("Recommend = %q", got)
	}

	call := f.lastCall(t)
	if !strings.Contains(call.body.Contents[0].Parts[0].Text, "sad") {
		t.Errorf("prompt = %q", call.body.Contents[0].Parts[0].Text)
	}
	gc := call.body.GenerationConfig
	if !floatNear(gc["temperature"], 0.8) {
		t.Errorf("temperature = %v, want 0.8", gc["temperature"])
	}
	if v, ok := gc["maxOutputTokens"]; ok {
		t.Errorf("maxOutputTokens = %v, want unset", v)
	}
}

func TestGenAI_EmptyCandidatesFallBack(t *testing.T) {
	f := &fakeGemini{response: `{"candidates":[]}`}
	svc := newGenAIService(t, f)

	res := svc.SummarizeResult(context.Background(), "Quiet day.")
	if !res.Fallback() || res.Text != summaryFallback {
		t.Fatalf("result = %+v", res)
	}
	if !errors.Is(res.Cause, ErrEmptyResponse) {
		t.Errorf("cause = %v, want ErrEmptyResponse", res.Cause)
	}
}

func TestGenAI_ProviderErrorFallsBack(t *testing.T) {
	f := &fakeGemini{
		status:   http.StatusForbidden,
		response: `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`,
	}
	svc := newGenAIService(t, f)

	if got := svc.Recommend(context.Background(), models.MoodAnxious); got != recommendFallback {
		t.Errorf("Recommend = %q, want fallback", got)
	}
}
