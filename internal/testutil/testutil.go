// Package testutil provides shared test helpers for databases and fake providers.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/starford/solace/internal/insight"
	"github.com/starford/solace/internal/journal"
)

// TestDB creates a temporary journal database that is automatically cleaned up.
func TestDB(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "solace-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Generator is a scripted insight.Generator that records every request.
type Generator struct {
	mu    sync.Mutex
	calls []insight.Request
	reply func(ctx context.Context, req insight.Request) (string, error)
}

// NewGenerator returns a Generator answering with reply.
func NewGenerator(reply func(ctx context.Context, req insight.Request) (string, error)) *Generator {
	return &Generator{reply: reply}
}

// Replying returns a Generator that always answers text.
func Replying(text string) *Generator {
	return NewGenerator(func(context.Context, insight.Request) (string, error) { return text, nil })
}

// Failing returns a Generator that always fails with err.
func Failing(err error) *Generator {
	return NewGenerator(func(context.Context, insight.Request) (string, error) { return "", err })
}

// Generate records req and delegates to the scripted reply.
func (g *Generator) Generate(ctx context.Context, req insight.Request) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	return g.reply(ctx, req)
}

// Calls returns a copy of the recorded requests.
func (g *Generator) Calls() []insight.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]insight.Request(nil), g.calls...)
}

// Insight builds an insight service around gen with default config and a
// silent logger.
func Insight(gen insight.Generator) *insight.Service {
	return insight.NewService(gen, insight.DefaultConfig(), insight.WithLogger(Logger()))
}
