package relational

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artie-labs/ingest/clients/postgres"
	"github.com/artie-labs/ingest/clients/postgres/dialect"
	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/csvreader"
	"github.com/artie-labs/ingest/lib/httpsource"
	"github.com/artie-labs/ingest/lib/parquetutil"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/base"
	"github.com/artie-labs/ingest/lib/tripdata"
	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

type Loader struct {
	httpClient *httpsource.Client
	store      *postgres.Store
	metrics    base.Client
	source     config.Source
	tempDir    string
}

func NewLoader(cfg config.Config, store *postgres.Store, metricsClient base.Client) *Loader {
	return &Loader{
		httpClient: httpsource.NewClient(cfg.Download),
		store:      store,
		metrics:    metricsClient,
		source:     cfg.Source,
		tempDir:    cfg.Download.TempDir,
	}
}

// Run validates [opts] before connecting to Postgres, then replaces the zone lookup and appends one month of trips.
func Run(ctx context.Context, cfg config.Config, opts Options, metricsClient base.Client) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	pgCfg := opts.Postgres(cfg.Postgres)
	store, err := postgres.LoadStore(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer store.Close()

	loader := NewLoader(cfg, store, metricsClient)
	return loader.Load(ctx, opts)
}

func (l *Loader) Load(ctx context.Context, opts Options) error {
	zonesTableID, err := dialect.ParseTableIdentifier(opts.ZonesTable)
	if err != nil {
		return err
	}

	targetTableID, err := dialect.ParseTableIdentifier(opts.TargetTable)
	if err != nil {
		return err
	}

	month, err := tripdata.ParseMonth(opts.Month)
	if err != nil {
		return err
	}

	if err = l.LoadZones(ctx, zonesTableID); err != nil {
		return err
	}

	_, err = l.LoadTrips(ctx, targetTableID, tripdata.Dataset(opts.Dataset), opts.Year, month, opts.ChunkSize)
	return err
}

// LoadZones downloads the zone lookup and replaces [tableID] with it, column types are inferred from the values.
func (l *Loader) LoadZones(ctx context.Context, tableID dialect.TableIdentifier) error {
	body, err := l.httpClient.Open(ctx, l.source.ZoneLookupURL)
	if err != nil {
		return fmt.Errorf("failed to download zone lookup: %w", err)
	}
	defer body.Close()

	reader, err := csvreader.NewReader(body)
	if err != nil {
		return fmt.Errorf("failed to read zone lookup: %w", err)
	}
	defer reader.Close()

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("failed to read zone lookup: %w", err)
		}
		records = append(records, record)
	}

	cols, rows, err := inferTable(reader.Header(), records)
	if err != nil {
		return err
	}

	if err = l.store.ReplaceTable(ctx, tableID, cols, rows); err != nil {
		return fmt.Errorf("failed to replace %s: %w", tableID.FullyQualifiedName(), err)
	}

	l.metrics.Count("rows.inserted", int64(len(rows)), map[string]string{"table": tableID.Table()})
	slog.Info("Replaced zone lookup", slog.String("table", tableID.FullyQualifiedName()), slog.Int("rows", len(rows)))
	return nil
}

func inferTable(header []string, records [][]string) ([]columns.Column, [][]any, error) {
	cols := make([]columns.Column, len(header))
	values := make([]string, len(records))
	for colIdx, name := range header {
		for rowIdx, record := range records {
			values[rowIdx] = record[colIdx]
		}
		cols[colIdx] = columns.NewColumn(name, typing.InferKind(values))
	}

	rows := make([][]any, len(records))
	for rowIdx, record := range records {
		row := make([]any, len(cols))
		for colIdx, col := range cols {
			value, err := typing.ParseString(record[colIdx], col.KindDetails)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse column %q: %w", col.Name(), err)
			}
			row[colIdx] = value
		}
		rows[rowIdx] = row
	}

	return cols, rows, nil
}

// LoadTrips downloads one month of trip data and appends it to [tableID] in chunks of [chunkSize] rows.
// The table is created from the first chunk's schema if it doesn't exist. Reruns append duplicates.
func (l *Loader) LoadTrips(ctx context.Context, tableID dialect.TableIdentifier, dataset tripdata.Dataset, year int, month tripdata.Month, chunkSize int) (int64, error) {
	fileName := tripdata.FileName(dataset, year, month, tripdata.Parquet)
	url, err := tripdata.SourceURL(l.source.TripBaseURL, fileName)
	if err != nil {
		return 0, err
	}

	pattern := strings.TrimSuffix(fileName, string(tripdata.Parquet)) + "-*" + string(tripdata.Parquet)
	path, err := l.httpClient.DownloadToFile(ctx, url, l.tempDir, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to download %q: %w", fileName, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove temp file", slog.String("path", path), slog.Any("err", err))
		}
	}()

	exists, err := l.store.TableExists(ctx, tableID)
	if err != nil {
		return 0, err
	}

	var total int64
	var chunk int
	err = parquetutil.ReadBatches(ctx, path, chunkSize, func(batch parquetutil.Batch) error {
		start := time.Now()
		if !exists {
			if err := l.store.CreateTable(ctx, tableID, batch.Columns, false); err != nil {
				return err
			}
			exists = true
			slog.Info("Created table", slog.String("table", tableID.FullyQualifiedName()), slog.Int("columns", len(batch.Columns)))
		}

		inserted, err := l.store.Append(ctx, tableID, batch.Columns, batch.Rows)
		if err != nil {
			return fmt.Errorf("failed to append chunk %d: %w", chunk, err)
		}

		total += inserted
		chunk++
		tags := map[string]string{"table": tableID.Table()}
		l.metrics.Count("rows.inserted", inserted, tags)
		l.metrics.Timing("chunk.duration", time.Since(start), tags)
		slog.Info("Inserted chunk", slog.Int("chunk", chunk), slog.Int64("rows", inserted), slog.Duration("duration", time.Since(start)))
		return nil
	})
	if err != nil {
		return total, err
	}

	slog.Info("Finished loading trips", slog.String("file", fileName), slog.String("table", tableID.FullyQualifiedName()), slog.Int64("rows", total))
	return total, nil
}
