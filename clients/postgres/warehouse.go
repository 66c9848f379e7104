package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/artie-labs/ingest/clients/postgres/dialect"
	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/csvreader"
	"github.com/artie-labs/ingest/lib/destination"
	sqllib "github.com/artie-labs/ingest/lib/sql"
	"github.com/artie-labs/ingest/lib/tripdata/fhv"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

const (
	defaultWarehouseBatchSize = 10_000
	stagingCursor             = "ingest_stage"
)

// Warehouse runs the staging and merge steps against Postgres, rows are transformed in Go with the same rules BigQuery applies in SQL.
type Warehouse struct {
	store     *Store
	objects   destination.ObjectStore
	batchSize int
}

func NewWarehouse(store *Store, objects destination.ObjectStore) *Warehouse {
	return &Warehouse{
		store:     store,
		objects:   objects,
		batchSize: defaultWarehouseBatchSize,
	}
}

func (w *Warehouse) ParseTableID(value string) (sqllib.TableIdentifier, error) {
	return dialect.ParseTableIdentifier(value)
}

func (w *Warehouse) EnsureTables(ctx context.Context, finalTableID, stagingTableID sqllib.TableIdentifier) error {
	statements := []string{
		w.store.dialect.BuildCreateTableQuery(finalTableID, true, fhv.FinalSchema),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			w.store.dialect.QuoteIdentifier(finalTableID.Table()+"_"+constants.SourceFileColumn+"_idx"),
			finalTableID.FullyQualifiedName(),
			w.store.dialect.QuoteIdentifier(constants.SourceFileColumn),
		),
		w.store.dialect.BuildCreateTableQuery(stagingTableID, true, fhv.StageSchema),
	}
	if _, err := destination.ExecContextStatements(ctx, w.store, statements); err != nil {
		return fmt.Errorf("failed to create warehouse tables: %w", err)
	}

	slog.Info("Ensured Postgres tables", slog.String("final", finalTableID.FullyQualifiedName()), slog.String("stage", stagingTableID.FullyQualifiedName()))
	return nil
}

func (w *Warehouse) LoadStaging(ctx context.Context, object destination.Object, stagingTableID sqllib.TableIdentifier) error {
	body, err := w.objects.Open(ctx, object.Key)
	if err != nil {
		return err
	}
	defer body.Close()

	var reader *csvreader.Reader
	if strings.HasSuffix(object.Key, ".gz") {
		reader, err = csvreader.NewGzipReader(body)
	} else {
		reader, err = csvreader.NewReader(body)
	}
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", object.URI, err)
	}
	defer reader.Close()

	if len(reader.Header()) != len(fhv.StageSchema) {
		return fmt.Errorf("expected %d columns in %q, got %d", len(fhv.StageSchema), object.URI, len(reader.Header()))
	}

	var loaded int64
	err = w.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, w.store.dialect.BuildTruncateTableQuery(stagingTableID)); err != nil {
			return fmt.Errorf("failed to truncate staging table: %w", err)
		}

		for {
			records, err := reader.ReadBatch(w.batchSize)
			if err != nil {
				return fmt.Errorf("failed to read %q: %w", object.URI, err)
			}

			if len(records) == 0 {
				return nil
			}

			rows := make([][]any, len(records))
			for i, record := range records {
				rows[i] = stringsToValues(record)
			}

			inserted, err := w.store.insertRows(ctx, tx, stagingTableID, columns.ColumnNames(fhv.StageSchema), rows)
			if err != nil {
				return err
			}
			loaded += inserted
		}
	})
	if err != nil {
		return err
	}

	slog.Info("Loaded to staging", slog.String("table", stagingTableID.FullyQualifiedName()), slog.String("uri", object.URI), slog.Int64("rows", loaded))
	return nil
}

// Merge deletes the rows of [sourceFile] and re-inserts the transformed staging rows in one transaction.
func (w *Warehouse) Merge(ctx context.Context, stagingTableID, finalTableID sqllib.TableIdentifier, sourceFile string) error {
	var merged int64
	err := w.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, w.store.dialect.BuildDeleteBySourceFileQuery(finalTableID, constants.SourceFileColumn), sourceFile); err != nil {
			return fmt.Errorf("failed to delete rows for %q: %w", sourceFile, err)
		}

		if _, err := tx.ExecContext(ctx, w.store.dialect.BuildDeclareCursorQuery(stagingCursor, stagingTableID, columns.ColumnNames(fhv.StageSchema))); err != nil {
			return fmt.Errorf("failed to declare cursor: %w", err)
		}

		for {
			stageRows, err := w.fetchStagingRows(ctx, tx)
			if err != nil {
				return err
			}

			if len(stageRows) == 0 {
				break
			}

			finalRows := make([][]any, len(stageRows))
			for i, stageRow := range stageRows {
				if finalRows[i], err = fhv.TransformRow(stageRow, sourceFile); err != nil {
					return fmt.Errorf("failed to transform row: %w", err)
				}
			}

			inserted, err := w.store.insertRows(ctx, tx, finalTableID, columns.ColumnNames(fhv.FinalSchema), finalRows)
			if err != nil {
				return err
			}
			merged += inserted
		}

		if _, err := tx.ExecContext(ctx, w.store.dialect.BuildCloseCursorQuery(stagingCursor)); err != nil {
			return fmt.Errorf("failed to close cursor: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Transformed & loaded final", slog.String("table", finalTableID.FullyQualifiedName()), slog.String("sourceFile", sourceFile), slog.Int64("rows", merged))
	return nil
}

func (w *Warehouse) fetchStagingRows(ctx context.Context, tx *sql.Tx) ([][]string, error) {
	rows, err := tx.QueryContext(ctx, w.store.dialect.BuildFetchQuery(stagingCursor, w.batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staging rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(fhv.StageSchema))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}

		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan staging row: %w", err)
		}

		row := make([]string, len(values))
		for i, value := range values {
			row[i] = value.String
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staging rows: %w", err)
	}

	return result, nil
}

func (w *Warehouse) Close() error {
	return w.store.Close()
}

func stringsToValues(record []string) []any {
	values := make([]any, len(record))
	for i, value := range record {
		values[i] = value
	}
	return values
}
