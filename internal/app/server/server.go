package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/compensation"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/platform/authz"
	"hrdesk/internal/platform/config"
	cryptoutil "hrdesk/internal/platform/crypto"
	"hrdesk/internal/platform/db"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/transport/http/api"
	authhandler "hrdesk/internal/transport/http/handlers/auth"
	compensationhandler "hrdesk/internal/transport/http/handlers/compensation"
	"hrdesk/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New connects to the database, prepares the schema when configured to and
// wires every handler. Callers own the returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default()

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	mode, err := authz.ParseMode(cfg.AuthzMode)
	if err != nil {
		pool.Close()
		return nil, err
	}
	authorizer, err := authz.New(auth.RolePermissions, mode, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("authorization policy: %w", err)
	}

	collector := metrics.New()
	auditLog := audit.New(pool)
	compensationService := compensation.NewService(
		compensation.NewStore(pool, crypto),
		core.NewStore(pool),
		authorizer,
		compensation.WithTransactor(db.NewTransactionManager(pool)),
		compensation.WithAudit(auditLog),
		compensation.WithMetrics(collector),
		compensation.WithLogger(logger),
		compensation.WithStorageTimeout(cfg.StorageTimeout),
	)
	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.ExemptPaths("/healthz", "/readyz", "/metrics")))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/auth/me", authHandler.HandleMe)

			compensationHandler := compensationhandler.NewHandler(compensationService, authorizer)
			compensationHandler.RegisterRoutes(r)
		})
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

func (a *App) Close() {
	if a != nil && a.DB != nil {
		a.DB.Close()
	}
}

// Run loads configuration, serves until SIGINT or SIGTERM and then drains
// in-flight requests.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrdesk server listening", "addr", cfg.Addr, "env", cfg.Environment, "authzMode", cfg.AuthzMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
