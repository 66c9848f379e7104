package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/artie-labs/ingest/clients/postgres/dialect"
	"github.com/artie-labs/ingest/lib/batch"
	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/db"
	sqllib "github.com/artie-labs/ingest/lib/sql"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

const (
	// Postgres caps a single statement at 65,535 bind parameters.
	maxParamsPerStatement = 65_535
	maxRowsPerStatement   = 10_000
)

type Store struct {
	db.Store
	dialect dialect.PostgresDialect
}

func LoadStore(ctx context.Context, cfg config.Postgres) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, db.PostgresDriver, cfg.DSN(), cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}

	version, err := db.RetrieveVersion(ctx, store)
	if err != nil {
		slog.Warn("Failed to retrieve Postgres version", slog.Any("err", err))
	} else {
		slog.Info("Connected to Postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database), slog.String("version", version.String()))
	}

	return NewStore(store), nil
}

func NewStore(store db.Store) *Store {
	return &Store{Store: store}
}

func (s *Store) TableExists(ctx context.Context, tableID dialect.TableIdentifier) (bool, error) {
	query, args := s.dialect.BuildTableExistsQuery(tableID)
	var exists bool
	if err := s.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if %s exists: %w", tableID.FullyQualifiedName(), err)
	}

	return exists, nil
}

func (s *Store) CreateTable(ctx context.Context, tableID sqllib.TableIdentifier, cols []columns.Column, ifNotExists bool) error {
	if _, err := s.ExecContext(ctx, s.dialect.BuildCreateTableQuery(tableID, ifNotExists, cols)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableID.FullyQualifiedName(), err)
	}

	return nil
}

// ReplaceTable drops [tableID], recreates it from [cols] and inserts [rows], all in one transaction.
func (s *Store) ReplaceTable(ctx context.Context, tableID sqllib.TableIdentifier, cols []columns.Column, rows [][]any) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.dialect.BuildDropTableQuery(tableID)); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}

		if _, err := tx.ExecContext(ctx, s.dialect.BuildCreateTableQuery(tableID, false, cols)); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}

		_, err := s.insertRows(ctx, tx, tableID, columns.ColumnNames(cols), rows)
		return err
	})
}

// Append inserts [rows] into an existing table in one transaction and returns the number of rows written.
func (s *Store) Append(ctx context.Context, tableID sqllib.TableIdentifier, cols []columns.Column, rows [][]any) (int64, error) {
	var inserted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		inserted, err = s.insertRows(ctx, tx, tableID, columns.ColumnNames(cols), rows)
		return err
	})
	return inserted, err
}

func rowsPerStatement(numCols int) int {
	if numCols <= 0 {
		return maxRowsPerStatement
	}
	return max(min(maxRowsPerStatement, maxParamsPerStatement/numCols), 1)
}

func (s *Store) insertRows(ctx context.Context, tx *sql.Tx, tableID sqllib.TableIdentifier, cols []string, rows [][]any) (int64, error) {
	var inserted int64
	err := batch.ByCount(rows, rowsPerStatement(len(cols)), func(chunk [][]any) error {
		args := make([]any, 0, len(chunk)*len(cols))
		for _, row := range chunk {
			if len(row) != len(cols) {
				return fmt.Errorf("row has %d values, expected %d", len(row), len(cols))
			}
			args = append(args, row...)
		}

		result, err := tx.ExecContext(ctx, s.dialect.BuildInsertQuery(tableID, cols, len(chunk)), args...)
		if err != nil {
			return fmt.Errorf("failed to insert into %s: %w", tableID.FullyQualifiedName(), err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		inserted += affected
		return nil
	})

	return inserted, err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start tx: %w", err)
	}

	if err = fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.Warn("Unable to rollback", slog.Any("err", rollbackErr))
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}
