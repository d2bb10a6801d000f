package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/config"
	apphttp "budgetbuddy/internal/http"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/worker"
)

const (
	shutdownTimeout = 30 * time.Second
	janitorInterval = time.Second
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fallback := cli.SetupLogger(&config.Config{LogFormat: "text"}, os.Stderr)
		fallback.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error("budgetbuddy stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("budgetbuddy stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	app, err := cli.Bootstrap(ctx, cfg, logger, cli.Options{Publish: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err.Error())
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, app.Service,
		apphttp.WithLogger(logger),
		apphttp.WithReadyCheck(app.Backend.Ping),
		apphttp.WithTrustedProxies(cfg.TrustedProxies...))

	janitor := cache.NewManager(logger)
	janitor.Register(app.Feed.Cleaner())
	janitor.Register(srv.Limiter())

	weekly := worker.NewWeeklyWorker(app.Service, cfg.WeeklyInterval, logger)

	logger.Info("Starting budgetbuddy",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"amqp_enabled", app.Publisher != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, shutdownTimeout) })
	g.Go(func() error { return janitor.Run(gctx, janitorInterval) })
	g.Go(func() error { return weekly.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
