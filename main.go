package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/msomdec/bloomy/internal/config"
	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/handler"
	"github.com/msomdec/bloomy/internal/obs"
	"github.com/msomdec/bloomy/internal/password"
	"github.com/msomdec/bloomy/internal/payment"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/repository/postgres"
	"github.com/msomdec/bloomy/internal/repository/sqlite"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	ctx := context.Background()

	db, durable, err := openDurable(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "backend", cfg.DurableBackend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "backend", cfg.DurableBackend)

	ephemeral, ephemeralCloser, err := openEphemeral(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "backend", cfg.EphemeralBackend, "error", err)
		os.Exit(1)
	}
	defer ephemeralCloser.Close()

	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		slog.Error("invalid password hasher", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.New(reg)

	limiter := service.NewTokenBucket(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	if cfg.DemoMode {
		slog.Warn("demo mode enabled: reset tokens are returned to clients")
	}
	authService := service.NewAuthService(
		docstore.NewUserRepository(durable),
		docstore.NewOrderRepository(durable),
		hasher, nil, metrics,
		service.AuthConfig{ResetTokenTTL: cfg.ResetTokenTTL, DemoMode: cfg.DemoMode},
	)

	health := []handler.Pinger{db}
	if p, ok := ephemeral.(handler.Pinger); ok {
		health = append(health, p)
	}

	router := handler.NewRouter(handler.Deps{
		Auth:       authService,
		Payments:   payment.NewSimulator(ephemeral, cfg.PaymentLatency, metrics),
		Product:    domain.SmartCase,
		Identity:   handler.NewBrowserIdentity(cfg.JWTSecret, cfg.CookieSecure),
		Durable:    durable,
		Ephemeral:  ephemeral,
		SessionTTL: cfg.SessionTTL,
		AdminToken: cfg.AdminToken,
		Limiter:    limiter,
		Metrics:    metrics,
		Health:     health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

type durableDB interface {
	domain.Database
	handler.Pinger
}

func openDurable(ctx context.Context, cfg config.Config) (durableDB, storage.Store, error) {
	switch cfg.DurableBackend {
	case config.BackendPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.KV(), nil
	case config.BackendSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.KV(), nil
	}
	return nil, nil, fmt.Errorf("unknown durable backend %q", cfg.DurableBackend)
}

// openEphemeral returns the store holding tab sessions and payment intents.
func openEphemeral(ctx context.Context, cfg config.Config) (storage.Store, io.Closer, error) {
	switch cfg.EphemeralBackend {
	case config.BackendRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := storage.NewRedis(client, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, store, nil
	case config.BackendMemory:
		store := storage.NewExpiringMemory(cfg.SessionTTL, time.Minute)
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown ephemeral backend %q", cfg.EphemeralBackend)
}
