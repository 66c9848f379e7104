package destination

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	sqllib "github.com/artie-labs/ingest/lib/sql"
)

// Object is a file that has been written to an [ObjectStore].
type Object struct {
	Key string
	// URI is the fully qualified location, e.g. gs://bucket/fhv/2019/fhv_tripdata_2019-01.csv.gz
	URI string
}

// ObjectStore is implemented by blob storage (GCS, S3).
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Upload streams [body] into [key], the body is read until EOF and is not buffered in full.
	Upload(ctx context.Context, key string, body io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	URI(key string) string
	Close() error
}

// Warehouse is implemented by destinations that can load objects into a staging table and merge them into a final table.
type Warehouse interface {
	ParseTableID(value string) (sqllib.TableIdentifier, error)
	EnsureTables(ctx context.Context, finalTableID, stagingTableID sqllib.TableIdentifier) error
	// LoadStaging replaces the contents of [stagingTableID] with the rows of [object].
	LoadStaging(ctx context.Context, object Object, stagingTableID sqllib.TableIdentifier) error
	// Merge deletes every row tagged with [sourceFile] from [finalTableID] and then inserts the transformed staging rows.
	Merge(ctx context.Context, stagingTableID, finalTableID sqllib.TableIdentifier, sourceFile string) error
	Close() error
}

// SQLExecutor is implemented by [db.Store].
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ExecContextStatements executes one or more statements against a [SQLExecutor].
// If there is more than one statement, the statements will be executed inside of a transaction.
func ExecContextStatements(ctx context.Context, executor SQLExecutor, statements []string) ([]sql.Result, error) {
	switch len(statements) {
	case 0:
		return nil, fmt.Errorf("statements is empty")
	case 1:
		slog.Debug("Executing...", slog.String("query", statements[0]))
		result, err := executor.ExecContext(ctx, statements[0])
		if err != nil {
			return nil, fmt.Errorf("failed to execute statement: %w", err)
		}

		return []sql.Result{result}, nil
	default:
		tx, err := executor.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to start tx: %w", err)
		}
		var committed bool
		defer func() {
			if !committed {
				if rollbackErr := tx.Rollback(); rollbackErr != nil {
					slog.Warn("Unable to rollback", slog.Any("err", rollbackErr))
				}
			}
		}()

		var results []sql.Result
		for _, statement := range statements {
			slog.Debug("Executing...", slog.String("query", statement))
			result, err := tx.ExecContext(ctx, statement)
			if err != nil {
				return nil, fmt.Errorf("failed to execute statement: %q, err: %w", statement, err)
			}

			results = append(results, result)
		}

		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit statements: %v, err: %w", statements, err)
		}
		committed = true
		return results, nil
	}
}
