package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/config"
	"github.com/muze-cafe/api/internal/database"
	"github.com/muze-cafe/api/internal/logging"
	"github.com/muze-cafe/api/internal/notify"
	"github.com/muze-cafe/api/internal/pricing"
	"github.com/muze-cafe/api/internal/ratelimit"
	"github.com/muze-cafe/api/internal/router"
	"github.com/muze-cafe/api/internal/service"
	"github.com/muze-cafe/api/internal/ws"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logrus.Info("migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logrus.Info("connected to database")

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub()
	go hub.Run(hubCtx)

	counter, closeCounter := newCounter(ctx, cfg)
	defer closeCounter()

	var notifier service.Notifier = notify.Noop{}
	if cfg.ResendAPIKey != "" {
		notifier = notify.NewMailer(cfg.ResendAPIKey, cfg.FromEmail, cfg.CafeName)
		logrus.WithField("from", cfg.FromEmail).Info("email notifications enabled")
	} else {
		logrus.Warn("RESEND_API_KEY not set, email notifications disabled")
	}

	if cfg.StaffPINHash == "" {
		logrus.Warn("STAFF_PIN_HASH not set, staff login disabled")
	}

	newStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orders := service.NewOrderService(pool, newStore, hub, notifier, service.Options{
		Location:       cfg.Location,
		DefaultTaxRate: pricing.ParseTaxRate(cfg.DefaultTaxRate, pricing.DefaultTaxRate),
		NotifyTimeout:  10 * time.Second,
	})

	r := router.New(cfg, database.New(pool), orders, hub, counter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"location": cfg.Location.String(),
			"tax_rate": cfg.DefaultTaxRate,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("http shutdown")
	}
	stopHub()
	orders.Wait()
	logrus.Info("shutdown complete")
	return nil
}

// newCounter picks the rate limit store. Redis is used when configured and
// reachable; otherwise limits are kept in process memory.
func newCounter(ctx context.Context, cfg *config.Config) (ratelimit.Counter, func()) {
	if !cfg.RateLimitEnabled {
		logrus.Warn("rate limiting disabled")
		return nil, func() {}
	}
	if cfg.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set, using in-memory rate limits")
		return ratelimit.NewMemoryCounter(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("redis unreachable, using in-memory rate limits")
		client.Close()
		return ratelimit.NewMemoryCounter(), func() {}
	}

	logrus.WithField("addr", cfg.RedisAddr).Info("using redis rate limits")
	return ratelimit.NewRedisCounter(client), func() { client.Close() }
}
