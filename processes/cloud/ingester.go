package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/destination"
	"github.com/artie-labs/ingest/lib/httpsource"
	"github.com/artie-labs/ingest/lib/sql"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/base"
	"github.com/artie-labs/ingest/lib/tripdata"
)

// Ingester moves FHV monthly files from the public mirror into an object store, and optionally into a warehouse.
// It owns one client per external system for the whole run, [Ingester.Close] releases them.
type Ingester struct {
	httpClient *httpsource.Client
	objects    destination.ObjectStore
	// warehouse is nil when no table is configured.
	warehouse  destination.Warehouse
	metrics    base.Client
	fhvBaseURL string
}

func NewIngester(cfg config.Config, objects destination.ObjectStore, warehouse destination.Warehouse, metricsClient base.Client) *Ingester {
	return &Ingester{
		httpClient: httpsource.NewClient(cfg.Download),
		objects:    objects,
		warehouse:  warehouse,
		metrics:    metricsClient,
		fhvBaseURL: cfg.Source.FHVBaseURL,
	}
}

type Result struct {
	Uploaded []tripdata.Month
	// Existing months were already in the object store and were not downloaded again.
	Existing []tripdata.Month
	Skipped  []tripdata.Month
	Loaded   []tripdata.Month
}

func objectKey(year int, month tripdata.Month) string {
	return tripdata.ObjectKey(tripdata.FHV, year, month, tripdata.CSVGzip)
}

// UploadMonth streams one month into the object store. It returns false without contacting the source if the object already exists.
// A missing source file surfaces as [httpsource.StatusError].
func (i *Ingester) UploadMonth(ctx context.Context, year int, month tripdata.Month) (bool, error) {
	key := objectKey(year, month)
	exists, err := i.objects.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check if %q exists: %w", i.objects.URI(key), err)
	}

	if exists {
		slog.Info("Already exists, skipping", slog.String("uri", i.objects.URI(key)))
		return false, nil
	}

	url, err := tripdata.SourceURL(i.fhvBaseURL, tripdata.FileName(tripdata.FHV, year, month, tripdata.CSVGzip))
	if err != nil {
		return false, err
	}

	body, err := i.httpClient.Open(ctx, url)
	if err != nil {
		return false, err
	}
	defer body.Close()

	start := time.Now()
	if err = i.objects.Upload(ctx, key, body); err != nil {
		return false, fmt.Errorf("failed to upload %q: %w", i.objects.URI(key), err)
	}

	i.metrics.Timing("step.duration", time.Since(start), map[string]string{"step": "upload"})
	slog.Info("Uploaded", slog.String("uri", i.objects.URI(key)))
	return true, nil
}

// EnsureWarehouseTables creates the final and staging tables if they don't exist yet, it is safe to call on every run.
func (i *Ingester) EnsureWarehouseTables(ctx context.Context, finalTableID, stagingTableID sql.TableIdentifier) error {
	if err := i.warehouse.EnsureTables(ctx, finalTableID, stagingTableID); err != nil {
		return fmt.Errorf("failed to ensure warehouse tables: %w", err)
	}
	return nil
}

// LoadStagingFromObject overwrites [stagingTableID] with the rows of [object].
func (i *Ingester) LoadStagingFromObject(ctx context.Context, object destination.Object, stagingTableID sql.TableIdentifier) error {
	start := time.Now()
	if err := i.warehouse.LoadStaging(ctx, object, stagingTableID); err != nil {
		return fmt.Errorf("failed to load %q into %s: %w", object.URI, stagingTableID.FullyQualifiedName(), err)
	}

	i.metrics.Timing("step.duration", time.Since(start), map[string]string{"step": "load"})
	return nil
}

// MergeStagingToFinal replaces every final row tagged with [sourceFileKey] with the transformed staging rows.
func (i *Ingester) MergeStagingToFinal(ctx context.Context, stagingTableID, finalTableID sql.TableIdentifier, sourceFileKey string) error {
	start := time.Now()
	if err := i.warehouse.Merge(ctx, stagingTableID, finalTableID, sourceFileKey); err != nil {
		return fmt.Errorf("failed to merge %q into %s: %w", sourceFileKey, finalTableID.FullyQualifiedName(), err)
	}

	i.metrics.Timing("step.duration", time.Since(start), map[string]string{"step": "merge"})
	return nil
}

// IngestPeriod uploads every month of [period] in order. When [table] is set each month is also loaded and merged,
// whether or not it was uploaded on this run. Months missing from the source are skipped, any other failure aborts.
func (i *Ingester) IngestPeriod(ctx context.Context, period Period, table string) (Result, error) {
	months, err := period.Months()
	if err != nil {
		return Result{}, err
	}

	var finalTableID, stagingTableID sql.TableIdentifier
	if table != "" {
		if i.warehouse == nil {
			return Result{}, fmt.Errorf("table %q was provided without a warehouse", table)
		}

		if finalTableID, err = i.warehouse.ParseTableID(table); err != nil {
			return Result{}, err
		}

		stagingTableID = sql.StagingTableID(finalTableID)
		if err = i.EnsureWarehouseTables(ctx, finalTableID, stagingTableID); err != nil {
			return Result{}, err
		}
	}

	var result Result
	for _, month := range months {
		tags := map[string]string{"year": fmt.Sprint(period.Year), "month": month.String()}
		uploaded, err := i.UploadMonth(ctx, period.Year, month)
		if err != nil {
			if httpsource.IsStatusError(err) {
				slog.Warn("Skipping missing file", slog.Int("year", period.Year), slog.String("month", month.String()), slog.Any("err", err))
				i.metrics.Incr("month.skipped", tags)
				result.Skipped = append(result.Skipped, month)
				continue
			}
			return result, err
		}

		if uploaded {
			i.metrics.Incr("month.uploaded", tags)
			result.Uploaded = append(result.Uploaded, month)
		} else {
			result.Existing = append(result.Existing, month)
		}

		if finalTableID == nil {
			continue
		}

		key := objectKey(period.Year, month)
		object := destination.Object{Key: key, URI: i.objects.URI(key)}
		if err = i.LoadStagingFromObject(ctx, object, stagingTableID); err != nil {
			return result, err
		}

		if err = i.MergeStagingToFinal(ctx, stagingTableID, finalTableID, object.URI); err != nil {
			return result, err
		}

		result.Loaded = append(result.Loaded, month)
	}

	slog.Info("Finished ingesting period",
		slog.Int("year", period.Year),
		slog.Int("uploaded", len(result.Uploaded)),
		slog.Int("existing", len(result.Existing)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("loaded", len(result.Loaded)),
	)
	return result, nil
}

func (i *Ingester) Close() error {
	var errs []error
	if i.warehouse != nil {
		if err := i.warehouse.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close warehouse: %w", err))
		}
	}

	if err := i.objects.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close object store: %w", err))
	}

	return errors.Join(errs...)
}
