// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/starford/solace/internal/api"
	"github.com/starford/solace/internal/insight"
	"github.com/starford/solace/internal/journal"
	"github.com/starford/solace/internal/journalservice"
	"github.com/starford/solace/internal/mcpserver"
	"github.com/starford/solace/internal/metrics"
	"github.com/starford/solace/internal/prompts"
	"github.com/starford/solace/internal/session"
	"github.com/starford/solace/internal/sse"
)

// core holds the components shared by the HTTP and MCP entry points.
type core struct {
	db       *journal.DB
	prompts  *prompts.Store
	registry *prometheus.Registry
	insight  *insight.Service
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildCore opens the journal database and assembles the insight service.
// The caller closes c.db.
func (a *application) buildCore(ctx context.Context, logger *slog.Logger) (*core, error) {
	cfg := a.config

	db, err := journal.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	ps, err := prompts.NewStore(cfg.Prompts.Path, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init prompts: %w", err)
	}

	reg := metrics.NewRegistry()

	gen := a.generator
	if gen == nil {
		var gopts []insight.GenAIOption
		if cfg.Insight.BaseURL != "" {
			gopts = append(gopts, insight.WithBaseURL(cfg.Insight.BaseURL))
		}
		gen = insight.NewGenerator(ctx, cfg.Insight.APIKey, logger, gopts...)
	}

	opts := []insight.Option{
		insight.WithPrompts(ps),
		insight.WithMetrics(metrics.NewInsight(reg)),
		insight.WithLogger(logger),
	}
	if cfg.Insight.RateLimit > 0 {
		opts = append(opts, insight.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Insight.RateLimit), cfg.Insight.RateBurst)))
	}

	return &core{
		db:       db,
		prompts:  ps,
		registry: reg,
		insight:  insight.NewService(gen, cfg.Insight.ServiceConfig(), opts...),
	}, nil
}

// newRootRouter mounts health checks, metrics and the API.
func newRootRouter(c *core, apiRouter http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler(c.registry))

	r.Mount("/api", apiRouter)
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("model", cfg.Insight.Model),
		slog.Bool("insight_enabled", cfg.Insight.APIKey != ""),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := app.buildCore(ctx, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	journals := journalservice.NewService(c.db, c.insight,
		journalservice.WithNotifier(broker),
		journalservice.WithLogger(logger))
	defer journals.Close()

	sessions := session.NewRegistry(cfg.Sessions.IdleTTL, c.insight, journals,
		session.WithLogger(logger),
		session.WithNotifier(func(s session.Snapshot) {
			broker.Publish(sse.Event{Type: sse.TypeSessionUpdated, Session: s.ID, Data: s})
		}))
	defer sessions.Close()

	h := api.NewHandler(c.insight, journals, sessions, broker)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newRootRouter(c, apiRouter),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Summarize entries left pending by a previous run.
	g.Go(func() error {
		n, err := journals.ResumePending(gCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("resume pending summaries failed", slog.String("error", err.Error()))
		}
		if n > 0 {
			logger.Info("Resumed pending summaries", slog.Int("count", n))
		}
		return nil
	})

	if cfg.Prompts.Path != "" && cfg.Prompts.Watch {
		g.Go(func() error {
			if err := c.prompts.Watch(gCtx); err != nil {
				logger.Warn("prompt watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if cfg.Sessions.IdleTTL > 0 {
		g.Go(func() error {
			return sessions.Run(gCtx, cfg.Sessions.SweepInterval)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the background loops stop with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the journal tools over stdio. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	slog.SetDefault(logger)

	c, err := app.buildCore(ctx, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	journals := journalservice.NewService(c.db, c.insight, journalservice.WithLogger(logger))
	defer journals.Close()

	logger.Info("MCP server starting", slog.String("sqlite_path", app.config.SQLite.Path))
	return mcpserver.New(c.insight, journals, app.version).ServeStdio()
}
