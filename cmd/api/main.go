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

	"cafe_bot_backend/internal/assets"
	"cafe_bot_backend/internal/bot"
	"cafe_bot_backend/internal/carousel"
	apphttp "cafe_bot_backend/internal/http"
	"cafe_bot_backend/internal/http/router"
	"cafe_bot_backend/internal/line"
	"cafe_bot_backend/internal/nearby"
	"cafe_bot_backend/internal/restsearch"
	"cafe_bot_backend/internal/webhook"
	"cafe_bot_backend/platform/config"
	"cafe_bot_backend/platform/httpkit"
	"cafe_bot_backend/platform/logger"
	"cafe_bot_backend/platform/validator"

	"golang.org/x/sync/errgroup"
)

const (
	lineRequestTimeout = 10 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Getenv("APP_ENV")).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	searchHTTP, err := httpkit.NewOutboundClient(cfg.GetProxyURL(), cfg.GetRestSearchTimeout())
	if err != nil {
		return fmt.Errorf("create search http client: %w", err)
	}
	lineHTTP, err := httpkit.NewOutboundClient(cfg.GetProxyURL(), lineRequestTimeout)
	if err != nil {
		return fmt.Errorf("create line http client: %w", err)
	}

	var dedup webhook.Deduplicator = webhook.NoopDeduplicator{}
	var health apphttp.HealthChecker
	if cfg.IsDedupEnabled() {
		redisDedup, err := initDeduplicator(ctx, cfg, log)
		if err != nil {
			log.Warn("redis unavailable; webhook dedup disabled", "error", err)
		} else {
			defer func() {
				_ = redisDedup.Close()
			}()
			dedup = redisDedup
			health = redisDedup
			log.Info("webhook dedup enabled", "ttl", cfg.GetDedupTTL())
		}
	} else {
		log.Warn("REDIS_URL not configured; webhook dedup disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	searchClient := restsearch.NewClient(cfg, searchHTTP, log)
	formatter := carousel.NewFormatter(cfg.GetBotServerURL())

	gateway, err := line.NewGateway(cfg, lineHTTP, log)
	if err != nil {
		return err
	}
	dispatcher := bot.NewDispatcher(searchClient, formatter, gateway, cfg, log)

	val := validator.New()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: health,
		Modules: []apphttp.Module{
			webhook.NewModule(gateway, dispatcher, dedup, cfg, log),
			nearby.NewModule(searchClient, formatter, val),
			assets.NewModule(),
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func initDeduplicator(ctx context.Context, cfg config.WebhookConfig, log *logger.Logger) (*webhook.RedisDeduplicator, error) {
	client, err := webhook.NewRedisClient(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	dedup := webhook.NewRedisDeduplicator(client, cfg.GetDedupTTL())
	if err := withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
		return dedup.Ping(ctx)
	}); err != nil {
		_ = dedup.Close()
		return nil, err
	}
	return dedup, nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
