// Package internal wires configuration, storage, and the long-running
// lexicon surfaces together.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lexicon/internal/api"
	"github.com/starford/lexicon/internal/mcpserver"
	"github.com/starford/lexicon/internal/sse"
	"github.com/starford/lexicon/internal/termservice"
	"github.com/starford/lexicon/internal/watcher"
)

// Serve runs the HTTP API, the SSE event stream, and the file watcher until
// ctx is cancelled or a shutdown signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.App.LogLevel, true)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vocabulary_root", cfg.Vocabulary.Root),
		slog.Bool("journal_enabled", cfg.Journal.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := Bootstrap(cfg, logger, termservice.WithEvents(broker))
	if err != nil {
		return fmt.Errorf("init vocabulary: %w", err)
	}
	defer rt.Close()

	apiRouter := api.NewRouter(rt.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(rt.Storage.Root()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"vocabulary root missing"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := newHTTPServer(cfg.App.HTTP.Address(), r, broker)

	g, gCtx := errgroup.WithContext(ctx)

	// Report edits made to the tree outside this process.
	g.Go(func() error {
		display := filepath.ToSlash(cfg.Vocabulary.Root)
		return watcher.Watch(gCtx, rt.Storage.Root(), cfg.Vocabulary.WatchDebounce, logger, func(paths []string) {
			for _, p := range paths {
				broker.PublishTermEvent(termservice.EventChanged, "", path.Join(display, p))
			}
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblock the watcher when shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown requested")

func newHTTPServer(addr string, h http.Handler, streams *sse.Broker) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never finish on their own; end them so Shutdown can drain.
	srv.RegisterOnShutdown(streams.Close)
	return srv
}

// ServeMCP runs the MCP server on stdin/stdout. Logs must not go to stdout
// here, so the default logger writes to stderr.
func ServeMCP(_ context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := app.logger
	if logger == nil {
		logger = NewLogger(os.Stderr, app.config.App.LogLevel, true)
	}

	rt, err := Bootstrap(app.config, logger)
	if err != nil {
		return fmt.Errorf("init vocabulary: %w", err)
	}
	defer rt.Close()

	logger.Info("MCP server starting", slog.String("vocabulary_root", app.config.Vocabulary.Root))
	return mcpserver.New(rt.Service, app.version).ServeStdio()
}
