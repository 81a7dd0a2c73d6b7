package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/config"
	"github.com/Simplici0/sumrai/internal/db"
	"github.com/Simplici0/sumrai/internal/logging"
	"github.com/Simplici0/sumrai/internal/metrics"
	"github.com/Simplici0/sumrai/internal/migrations"
	"github.com/Simplici0/sumrai/internal/pricing"
	"github.com/Simplici0/sumrai/internal/seed"
	"github.com/Simplici0/sumrai/internal/store"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	auth    *authService
	db      *sql.DB
	store   *store.Store
	catalog *catalog.Store
	engine  *pricing.Engine
	log     *zap.Logger
	now     func() time.Time

	secureCookies bool
}

func main() {
	cfg := config.Load()

	logger := logging.Must(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDev(),
		Fields:      map[string]string{"service": "sumrai"},
	})
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}
	schema, err := migrations.Version(database)
	if err != nil {
		return err
	}
	logger.Info("database ready", zap.String("path", cfg.DBPath), zap.Int64("schema_version", schema))

	seedCatalog, err := loadSeedCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Catalog:       seedCatalog,
	})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	srv, err := newServer(context.Background(), database, cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.Int64("catalog_version", srv.catalog.Version()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadSeedCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// newServer wires the service over a migrated and seeded database.
func newServer(ctx context.Context, database *sql.DB, cfg config.Config, logger *zap.Logger) (*server, error) {
	st := store.New(database)

	c, version, err := st.LatestCatalog(ctx)
	if errors.Is(err, store.ErrNotFound) {
		c, version = catalog.Default(), 0
	} else if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	metrics.CatalogVersion.Set(float64(version))

	return &server{
		auth:          newAuthService(database, cfg.SessionSecret),
		db:            database,
		store:         st,
		catalog:       catalog.NewStore(c, version),
		engine:        pricing.New(logger.Named("pricing")),
		log:           logger,
		now:           time.Now,
		secureCookies: !cfg.IsDev(),
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Get("/catalog", s.handleGetCatalog)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.requireAdmin)
			r.Put("/catalog", s.handlePutCatalog)
			r.Post("/catalog/reset", s.handleResetCatalog)
		})

		r.Get("/selections/default", s.handleDefaultSelections)

		r.Post("/estimate", s.handleEstimate)
		r.Post("/estimate/export.csv", s.handleExportCSV)
		r.Post("/estimate/export.xlsx", s.handleExportXLSX)

		r.Post("/projects", s.handleCreateProject)
		r.Get("/projects", s.handleListProjects)
		r.Get("/projects/{id}", s.handleGetProject)
		r.Put("/projects/{id}", s.handleUpdateProject)
		r.Delete("/projects/{id}", s.handleDeleteProject)
		r.Get("/projects/{id}/estimate", s.handleProjectEstimate)
	})

	return r
}
