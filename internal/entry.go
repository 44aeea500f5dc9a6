// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/api"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/clipservice"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/confwatch"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/inkdrop"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/mcpserver"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/prefstore"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/slack"
	pkgconfig "github.com/k-ymmt/save-slack-to-inkdrop/pkg/config"
)

// runtime bundles the wired application pieces shared by all entry points.
type runtime struct {
	current *atomic.Pointer[Config]
	prefs   *prefstore.Store
	svc     *clipservice.Service
}

func (r *runtime) close() {
	if err := r.prefs.Close(); err != nil {
		slog.Warn("close preference store", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func initLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildRuntime opens the preference store and wires the API clients around a
// mutable config holder, so a config reload is picked up by in-flight
// clients through their token/options providers.
func buildRuntime(cfg *Config) (*runtime, error) {
	current := &atomic.Pointer[Config]{}
	current.Store(cfg)

	prefs, err := prefstore.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("init preference store: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	slackClient := slack.NewClient(
		func() string { return current.Load().Slack.Token },
		slack.WithDoer(httpClient),
	)
	inkdropClient := inkdrop.NewClient(
		func() inkdrop.Options { return current.Load().Inkdrop.Options() },
		inkdrop.WithDoer(httpClient),
	)

	return &runtime{
		current: current,
		prefs:   prefs,
		svc:     clipservice.New(slackClient, inkdropClient, prefs),
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := initLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("inkdrop_address", fmt.Sprintf("%s:%d", cfg.Inkdrop.Address, cfg.Inkdrop.Port)),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the config file so credentials can rotate without restart.
	if app.configPath != "" {
		g.Go(func() error {
			return confwatch.Watch(gCtx, app.configPath, logger, func() {
				reloadConfig(app.configPath, rt.current, logger)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// reloadConfig re-reads the config file and swaps the live config. Sections
// consumed only at startup (http port, store path, auth) still require a
// restart; the credential sections take effect immediately.
func reloadConfig(path string, current *atomic.Pointer[Config], logger *slog.Logger) {
	next := NewDefaultConfig()
	if err := pkgconfig.Load(path, next); err != nil {
		logger.Warn("config reload failed, keeping previous config", slog.String("error", err.Error()))
		return
	}
	prev := current.Load()
	if next.App.HTTP.Port != prev.App.HTTP.Port ||
		next.Store.Path != prev.Store.Path ||
		next.Auth != prev.Auth {
		logger.Warn("config reload: http/store/auth changes require a restart")
	}
	current.Store(next)
	logger.Info("config reloaded")
}

// RunMCP starts the MCP server on stdin/stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	initLogger(app.config)

	rt, err := buildRuntime(app.config)
	if err != nil {
		return err
	}
	defer rt.close()

	return mcpserver.New(rt.svc).ServeStdio()
}

// ClipRequest describes a one-shot clip from the command line.
type ClipRequest struct {
	URL    string
	Book   string // book id or name
	Tags   []string
	Share  string
	Status string
	DryRun bool
}

// Clip resolves req.URL and, unless DryRun is set, saves it into the
// requested book. The returned preview carries the rendered markdown either
// way.
func Clip(ctx context.Context, req ClipRequest, opts ...Option) (*clipservice.Preview, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	initLogger(app.config)

	rt, err := buildRuntime(app.config)
	if err != nil {
		return nil, err
	}
	defer rt.close()

	if req.DryRun {
		return rt.svc.Resolve(ctx, req.URL)
	}

	bookID, err := resolveBookID(ctx, rt.svc, req.Book)
	if err != nil {
		return nil, err
	}

	return rt.svc.SaveMessage(ctx, clipservice.SaveMessageRequest{
		URL:    req.URL,
		BookID: bookID,
		Tags:   req.Tags,
		Share:  req.Share,
		Status: req.Status,
	})
}

// resolveBookID accepts a book id or name; empty falls back to the stored
// default book.
func resolveBookID(ctx context.Context, svc *clipservice.Service, book string) (string, error) {
	books, def, err := svc.Books(ctx)
	if err != nil {
		return "", err
	}
	if book == "" {
		if def == "" {
			return "", fmt.Errorf("%w: no book given and no default book stored", apperr.ErrValidation)
		}
		return def, nil
	}
	for _, b := range books {
		if b.ID == book || b.Name == book {
			return b.ID, nil
		}
	}
	return "", fmt.Errorf("%w: unknown book %q", apperr.ErrValidation, book)
}
