// Package postgres provides a PostgreSQL key-value backend.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"budgetbuddy/internal/kv"
	"budgetbuddy/internal/log"
)

//go:embed 001_create_kv.sql
var migrationSQL string

var _ kv.Store = (*Store)(nil)

// Config holds the PostgreSQL backend configuration.
type Config struct {
	// DSN is a libpq style connection string or postgres:// URL.
	DSN string

	MaxPoolSize int
	// Attempts bounds retries of transient write failures.
	Attempts uint
	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration
}

// Store reads and writes ledger keys in a single table.
type Store struct {
	pool       *pgxpool.Pool
	logger     *log.Logger
	attempts   uint
	retryDelay time.Duration
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentPostgres)

	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 4
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{
		pool:       pool,
		logger:     logger,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}

	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("executing migration: %w", err)
	}

	logger.Info("connected to PostgreSQL", "max_conns", cfg.MaxPoolSize)
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM budgetbuddy_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	err := retry.Do(
		func() error {
			_, err := s.pool.Exec(ctx, `
				INSERT INTO budgetbuddy_kv (key, value, updated_at) VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
				key, value)
			return err
		},
		retry.RetryIf(func(err error) bool {
			if isTransient(err) {
				s.logger.Warn("transient write failure, will retry", log.FieldKey, key, log.FieldError, err)
				return true
			}
			return false
		}),
		retry.Attempts(s.attempts),
		retry.Delay(s.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// isTransient reports connection-level failures and the SQLSTATE classes
// that a retry can clear (serialization failures, deadlocks, admin shutdown).
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "57P01", "57P03":
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
