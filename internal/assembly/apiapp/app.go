// Package apiapp wires configuration, storage, the link service and the HTTP
// server into one runnable application.
package apiapp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"tinylink/internal/adapters/httpapi"
	"tinylink/internal/adapters/httpapi/stack"
	"tinylink/internal/adapters/memory"
	"tinylink/internal/adapters/postgres"
	"tinylink/internal/adapters/redisstore"
	"tinylink/internal/adapters/sqlite"
	"tinylink/internal/adapters/sqlstore"
	"tinylink/internal/app/links"
	"tinylink/internal/platform/config"
)

const redisKeyPrefix = "tinylink:"

type App struct {
	cfg    config.Config
	log    *slog.Logger
	store  links.Store
	closer func() error
	router http.Handler
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: cfg.Version,
		}); err != nil {
			return nil, fmt.Errorf("init sentry: %w", err)
		}
	}

	store, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := links.New(store, links.WithLogger(newLinksLogger(log.With("component", "links"))))

	plugins := []httpapi.EnginePlugin{
		stack.RequestID(),
		stack.Logger(),
		stack.Recovery(log),
	}

	if cfg.SentryDSN != "" {
		plugins = append(plugins, stack.Sentry(cfg.SentryMiddlewareTimeout))
	}

	plugins = append(plugins,
		stack.RequestTimeout(cfg.RequestBudget),
		stack.CORS(cfg.CORSAllowedOrigins),
	)

	r := httpapi.NewEngine(plugins...)
	httpapi.RegisterRoutes(r, httpapi.RouterDeps{
		Links:     svc,
		BaseURL:   cfg.BaseURL,
		Version:   cfg.Version,
		StartedAt: time.Now(),
		Logger:    log,
	})

	log.Info("app ready", "store", cfg.StoreDriver, "addr", cfg.HTTPAddr)

	return &App{cfg: cfg, log: log, store: store, closer: closer, router: r}, nil
}

// openStore builds the configured links.Store and the func releasing it.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (links.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.OpenConfig{
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}

		if err := migrate(ctx, cfg, log, db, postgres.Dialect); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return postgres.NewStore(db), db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}

		if err := migrate(ctx, cfg, log, db, sqlite.DialectFor(cfg.DatabaseURL)); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return sqlite.NewStore(db, cfg.DatabaseURL), db.Close, nil

	case config.DriverRedis:
		rdb, err := redisstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}

		return redisstore.New(rdb, redisstore.WithKeyPrefix(redisKeyPrefix)), rdb.Close, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; links are lost on restart")

		return memory.NewStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidStoreDriver, cfg.StoreDriver)
	}
}

func migrate(ctx context.Context, cfg config.Config, log *slog.Logger, db *sql.DB, d sqlstore.Dialect) error {
	if !cfg.MigrateOnStart {
		return nil
	}

	applied, err := sqlstore.Migrate(ctx, db, d)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("migrations applied", "dialect", d.Name, "count", applied)

	return nil
}

// Handler exposes the configured router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Close() error {
	if a.cfg.SentryDSN != "" {
		sentry.Flush(a.cfg.SentryFlushTimeout)
	}

	if a.closer == nil {
		return nil
	}

	return a.closer()
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: a.cfg.HTTPReadHeaderTimeout,
		ReadTimeout:       a.cfg.HTTPReadTimeout,
		WriteTimeout:      a.cfg.HTTPWriteTimeout,
		IdleTimeout:       a.cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		a.log.Info("shutting down http server")

		return gracefulShutdown(ctx, srv, a.cfg.HTTPShutdownTimeout, errCh)
	}
}

func gracefulShutdown(ctx context.Context, srv *http.Server, timeout time.Duration, errCh <-chan error) error {
	srv.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("http shutdown timed out; forced close: %w", err)
		}

		return fmt.Errorf("http shutdown failed; forced close: %w", err)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server stopped with error: %w", err)
	default:
		return nil
	}
}
