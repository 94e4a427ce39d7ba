package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInsight_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInsight(reg)

	m.Observe("summarize", "generated", 20*time.Millisecond)
	m.Observe("summarize", "fallback", time.Millisecond)
	m.Observe("summarize", "fallback", time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("summarize", "fallback")); got != 2 {
		t.Errorf("fallback count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("summarize", "generated")); got != 1 {
		t.Errorf("generated count = %v, want 1", got)
	}
}

func TestInsight_NilIsNoop(t *testing.T) {
	var m *Insight
	m.Observe("recommend", "generated", time.Second)
}

func TestHandler_ServesCollectors(t *testing.T) {
	reg := NewRegistry()
	m := NewInsight(reg)
	m.Observe("recommend", "generated", time.Millisecond)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "solace_insight_requests_total") {
		t.Error("metrics output missing insight counter")
	}
}
