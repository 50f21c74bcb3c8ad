// Package app wires configuration, services, and the HTTP router into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cardtracker/internal/config"
	"cardtracker/internal/errors"
	"cardtracker/internal/favorites"
	"cardtracker/internal/infrastructure"
	custommiddleware "cardtracker/internal/middleware"
	"cardtracker/internal/services"
	handlers "cardtracker/internal/transport/http"
)

const Version = "1.0.0"

// Application is the dependency container for the card catalog server.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Logger    *slog.Logger
	Metrics   *infrastructure.Metrics
	Catalog   *services.CatalogService
	Favorites *services.FavoritesService
}

// NewApplication loads configuration and assembles the full service
// graph and router.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig assembles the application around an already
// loaded configuration. Tests use it to inject temp directories.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("data_dir", cfg.Catalog.DataDir),
		slog.Bool("remote_favorites", cfg.Remote.IsConfigured()))

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() {
	cfg := a.Config

	a.Catalog = services.NewCatalogService(cfg.Catalog.DataDir, cfg.Catalog.LabelOverrides, a.Metrics, a.Logger)

	// The remote backend is first in line; it skips itself when no
	// repository credentials are configured and the local file takes
	// over.
	github := favorites.NewGitHubBackend(favorites.GitHubOptions{
		BaseURL: cfg.Remote.BaseURL,
		Repo:    cfg.Remote.Repo,
		Branch:  cfg.Remote.Branch,
		Path:    cfg.Remote.Path,
		Token:   cfg.Remote.Token,
		Timeout: cfg.Remote.Timeout,
	}, a.Logger)
	local := favorites.NewLocalBackend(cfg.LocalFavoritesPath(), a.Logger)

	store := favorites.NewStore(a.Logger, github, local)
	a.Favorites = services.NewFavoritesService(store, a.Metrics, a.Logger)
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// Metrics stay outside the logging group to keep scrapes quiet.
	r.Handle("/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.StructuredLogger(a.Logger))
		r.Use(custommiddleware.Recoverer(a.Logger))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		if a.Config.Server.RateLimit.Enabled {
			r.Use(custommiddleware.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		errorHandler := errors.NewErrorHandler(a.Logger)
		cards := handlers.NewCardsHandler(a.Catalog, a.Favorites, a.Logger, errorHandler)
		favs := handlers.NewFavoritesHandler(a.Favorites, a.Logger, errorHandler)
		health := handlers.NewHealthHandler(Version)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/cards", cards.Routes())
			r.Get("/expansions", cards.GetExpansions)
			r.Post("/catalog/reload", cards.ReloadCatalog)
			r.Mount("/favorites", favs.Routes())
			r.Get("/health", health.GetHealth)
		})
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server until ctx is cancelled or the server fails.
func (a *Application) Start(ctx context.Context) error {
	// Warm the catalog cache so the first request is fast. An empty
	// data directory is normal on first run.
	if _, err := a.Catalog.Load(ctx); err != nil {
		a.Logger.Warn("catalog not available at startup", slog.String("error", err.Error()))
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return a.Stop()
	}
}

// Stop shuts the server down gracefully within the configured timeout.
func (a *Application) Stop() error {
	a.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	infrastructure.CloseLogFile()
	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Start(ctx)
}
