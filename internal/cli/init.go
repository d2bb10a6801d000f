// Package cli provides common initialization shared by cmd/budgetbuddy,
// cmd/budgetctl and cmd/notify-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/classify"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// SetupLogger builds the application logger from cfg and sets it as the
// slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewClassifier picks the rules file when configured, else the named rule set.
func NewClassifier(cfg *config.Config) (*classify.Classifier, error) {
	var (
		rs  classify.RuleSet
		err error
	)
	if cfg.ClassifierRulesFile != "" {
		rs, err = classify.LoadRuleSet(cfg.ClassifierRulesFile)
	} else {
		rs, err = classify.Named(cfg.ClassifierRuleSet)
	}
	if err != nil {
		return nil, err
	}
	c, err := classify.New(rs)
	if err != nil {
		return nil, fmt.Errorf("compile classifier rules: %w", err)
	}
	return c, nil
}

// NewEngine builds the alert engine from the currency and threshold settings.
func NewEngine(cfg *config.Config) *alert.Engine {
	over, nearing := cfg.Thresholds()
	return alert.NewEngine(
		alert.WithCurrencySymbol(cfg.CurrencySymbol),
		alert.WithThresholds(alert.Thresholds{Over: over, Nearing: nearing}),
	)
}

// App is the wired core shared by every command.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Backend   *backend.BackendResult
	Store     *ledger.Store
	Feed      *alert.Feed
	Service   *services.BudgetService
	Publisher *amqp.Client
}

// Options toggles optional parts of Bootstrap.
type Options struct {
	// Publish connects to AMQP_URL when set. A failed connection is logged
	// and the app runs without publishing.
	Publish bool
}

// Bootstrap opens the configured store, loads the ledger and builds the
// budget service.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	classifier, err := NewClassifier(cfg)
	if err != nil {
		_ = res.Close()
		return nil, err
	}

	store, err := ledger.Open(ctx, res.Store,
		ledger.WithLogger(logger),
		ledger.WithKnownCategories(classifier.Categories()...))
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: res,
		Store:   store,
		Feed:    alert.NewFeed(cfg.AlertTTL, 100),
	}

	svcOpts := []services.Option{services.WithLogger(logger)}
	if opts.Publish && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without notifications",
				log.FieldError, err.Error())
		} else {
			app.Publisher = client
			svcOpts = append(svcOpts, services.WithPublisher(client))
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	app.Service = services.NewBudgetService(store, classifier, NewEngine(cfg), app.Feed, svcOpts...)

	logger.Info("Ledger loaded",
		"backend", cfg.DataBackend,
		"classifier", classifier.Name(),
		"expenses", len(store.Expenses()))
	return app, nil
}

// Close releases the publisher and the store.
func (a *App) Close() error {
	var first error
	if err := a.Service.Close(); err != nil {
		first = err
	}
	if err := a.Backend.Close(); err != nil && first == nil {
		first = fmt.Errorf("close backend: %w", err)
	}
	return first
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
