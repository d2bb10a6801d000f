package main

import (
	"context"
	"errors"
	"os"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/worker"
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
	// Alerts go to stdout, logs to stderr.
	logger := cli.SetupLogger(cfg, os.Stderr).WithComponent(log.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for notify-worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	handler := worker.NewAlertHandler(os.Stdout, logger)

	logger.Info("Starting notify-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := client.ConsumeAlerts(ctx, handler.HandleAlertMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("notify-worker stopped")
}
