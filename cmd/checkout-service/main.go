package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	checkout "github.com/fundspark/checkout-service"
	"github.com/fundspark/checkout-service/internal/api"
	"github.com/fundspark/checkout-service/internal/cache"
	"github.com/fundspark/checkout-service/internal/config"
	"github.com/fundspark/checkout-service/internal/repository"
	"github.com/fundspark/checkout-service/internal/service"
	"github.com/fundspark/checkout-service/pkg/db"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; production relies on real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	migrations, err := fs.Sub(checkout.MigrationsFS, "migrations")
	if err != nil {
		return err
	}
	if err := db.RunMigrations(migrations, cfg.DatabaseURL); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, coupon cache disabled until it recovers", "error", err)
	}

	coupons := service.NewCouponService(
		repository.NewCouponRepo(conn),
		cache.NewCouponCache(rdb, cfg.CouponCacheTTL),
	)
	payments := service.NewPaymentService(
		conn,
		repository.NewPackageRepo(conn),
		coupons,
		repository.NewTransactionRepo(conn),
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(coupons, payments),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("checkout service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
