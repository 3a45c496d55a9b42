package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/loginpanel/internal/adapter/driven/jsonfile"
	"github.com/ericfisherdev/loginpanel/internal/adapter/driven/memory"
	"github.com/ericfisherdev/loginpanel/internal/adapter/driven/mongodb"
	sqliteadapter "github.com/ericfisherdev/loginpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/loginpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/loginpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/loginpanel/internal/application"
	"github.com/ericfisherdev/loginpanel/internal/config"
	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/telemetry"
)

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"backend", cfg.Backend,
		"csrf", cfg.CSRF,
	)

	// 1. Open the configured credential backend.
	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	// 2. Wire application service and metrics.
	metrics := telemetry.NewMetrics()
	accounts := application.NewAccountService(backend, metrics, logger)

	// 3. Register API and GUI routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(accounts, metrics, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(accounts, webhandler.Options{
		CSRF:   cfg.CSRF,
		Banner: cfg.Banner,
	}, logger))

	handler := httphandler.ApplyMiddleware(mux, logger, metrics)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("loginpanel started",
		"listen_addr", cfg.ListenAddr,
		"backend", cfg.Backend,
		"signin", accounts.CanSignIn(),
		"register", accounts.CanRegister(),
	)

	// 4. Wait for shutdown signal or listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openBackend constructs the store for cfg.Backend. The returned close
// function releases its resources and is always non-nil on success.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (application.Backend, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case model.BackendMemory:
		users := memory.DefaultUsers()
		if cfg.SeedFile != "" {
			seeded, err := memory.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return application.Backend{}, nil, err
			}
			users = seeded
		}
		store := memory.NewStore(users)
		logger.Info("memory backend ready", "users", len(users), "seed_file", cfg.SeedFile)
		return application.Backend{Name: cfg.Backend, Verifier: store, Counter: store}, noop, nil

	case model.BackendFile:
		store, err := jsonfile.NewStore(cfg.UsersFile)
		if err != nil {
			return application.Backend{}, nil, err
		}
		if err := store.Init(ctx); err != nil {
			return application.Backend{}, nil, err
		}
		logger.Info("file backend ready", "url", store.URL())
		return application.Backend{Name: cfg.Backend, Registrar: store, Counter: store}, noop, nil

	case model.BackendDocument:
		store, err := mongodb.Connect(ctx, mongodb.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return application.Backend{}, nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Warn("could not create unique username index", "error", err)
		}
		logger.Info("document backend ready", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				logger.Error("error closing mongodb client", "error", err)
			}
		}
		return application.Backend{Name: cfg.Backend, Verifier: store, Registrar: store, Counter: store}, closeFn, nil

	case model.BackendSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return application.Backend{}, nil, err
		}
		schemaVersion, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return application.Backend{}, nil, err
		}
		logger.Info("sqlite backend ready", "path", db.Path(), "schema_version", schemaVersion)
		store := sqliteadapter.NewUserRepo(db)
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}
		return application.Backend{Name: cfg.Backend, Verifier: store, Registrar: store, Counter: store}, closeFn, nil

	default:
		return application.Backend{}, nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}
