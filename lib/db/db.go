package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/artie-labs/ingest/lib/retry"
)

const (
	jitterBaseMs = 500
	jitterMaxMs  = 5_000
)

type Store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

type storeWrapper struct {
	*sql.DB
	retryCfg retry.RetryConfig
}

func (s *storeWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return retry.WithRetries(ctx, s.retryCfg, func(attempt int, err error) (sql.Result, error) {
		if attempt > 0 {
			slog.Warn("Failed to execute the query, retrying...", slog.Any("err", err), slog.Int("attempt", attempt))
		}
		return s.DB.ExecContext(ctx, query, args...)
	})
}

func newRetryConfig(maxAttempts int) retry.RetryConfig {
	return retry.NewRetryConfig(retry.NewRetryConfigArgs{
		JitterBaseMs:   jitterBaseMs,
		JitterMaxMs:    jitterMaxMs,
		MaxAttempts:    maxAttempts,
		IsRetryableErr: isRetryableError,
	})
}

// WithDatabase wraps an existing [sql.DB], tests use this with sqlmock.
// Statements that fail on a dropped connection are resent until [maxAttempts] is reached, anything below 2 disables retries.
func WithDatabase(db *sql.DB, maxAttempts int) Store {
	return &storeWrapper{DB: db, retryCfg: newRetryConfig(maxAttempts)}
}

func Open(ctx context.Context, driverName, dsn string, maxAttempts int) (Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to start a SQL client for driver %q: %w", driverName, err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to validate the DB connection for driver %q: %w", driverName, err)
	}

	return WithDatabase(db, maxAttempts), nil
}
