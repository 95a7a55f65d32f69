package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/config"
	"github.com/leanttro/storefront/internal/content"
	"github.com/leanttro/storefront/internal/limiter"
	"github.com/leanttro/storefront/internal/metrics"
	"github.com/leanttro/storefront/internal/notify"
	"github.com/leanttro/storefront/internal/render"
	"github.com/leanttro/storefront/internal/server"
	"github.com/leanttro/storefront/internal/tenant"
	"github.com/leanttro/storefront/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// A missing .env is fine; the environment may be set externally.
	_ = godotenv.Load()

	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("LEANTTRO_LOG_LEVEL"))
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("LEANTTRO_LOG_FORMAT") == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Metrics registry and collector.
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Content store client and repositories.
	client := content.New(content.Config{
		BaseURL:           cfg.Content.BaseURL,
		Token:             cfg.Content.Token,
		Timeout:           cfg.Content.Timeout,
		RequestsPerSecond: cfg.Content.RequestsPerSecond,
		Burst:             cfg.Content.Burst,
	})
	client.OnResult = func(_, collection string, status int, err error) {
		collector.RecordContentCall(collection, status, err)
	}
	repos := content.NewRepos(client)

	// Graceful shutdown on SIGINT / SIGTERM. The limiter sweeper stops
	// with this context too.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Rate limiter: Redis when configured, per-process memory otherwise.
	var limit limiter.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limit, err = limiter.NewRedis(ctx, rdb, cfg.Limiter.Window, cfg.Limiter.Max)
		if err != nil {
			return fmt.Errorf("redis limiter: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis rate limiter")
	} else {
		limit = limiter.NewMemory(ctx, cfg.Limiter.Window, cfg.Limiter.Max)
	}

	// Mailer: SMTP when configured, reset links logged otherwise.
	var mailer notify.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn().Msg("SMTP not configured; password reset links will be logged")
		mailer = notify.LogMailer{}
	}

	// Sessions and auth flows.
	sessions := auth.NewSessionManager(
		cfg.Session.Secret,
		cfg.Session.CookieDomain,
		cfg.Session.TTL,
		cfg.Session.Secure,
	)
	authSvc := auth.NewService(repos.Stores(), sessions, mailer, cfg.Tenancy.BaseDomain)

	// Tenant resolver with resolution outcomes feeding metrics.
	resolver := tenant.NewResolver(repos.Stores(), cfg.Tenancy.BaseDomain, cfg.Tenancy.RootHosts)
	resolver.OnOutcome = func(source tenant.Source) {
		collector.RecordResolution(string(source))
	}

	// Page renderer over the embedded templates.
	renderer, err := render.New(web.Assets)
	if err != nil {
		return err
	}

	staticAssets, err := fs.Sub(web.Assets, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	srv := server.New(cfg, server.Deps{
		Repos:    repos,
		Auth:     authSvc,
		Resolver: resolver,
		Limiter:  limit,
		Renderer: renderer,
		Metrics:  collector,
		Gatherer: registry,
		Static:   staticAssets,
	})

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("base_domain", cfg.Tenancy.BaseDomain).
			Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
