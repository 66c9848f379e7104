package cloud

import (
	"context"
	"fmt"

	"github.com/artie-labs/ingest/clients/bigquery"
	bqdialect "github.com/artie-labs/ingest/clients/bigquery/dialect"
	"github.com/artie-labs/ingest/clients/postgres"
	"github.com/artie-labs/ingest/lib/awslib"
	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/destination"
	"github.com/artie-labs/ingest/lib/gcslib"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/base"
)

// Run validates [opts] before any client is created, then ingests the requested period.
func Run(ctx context.Context, cfg config.Config, opts Options, metricsClient base.Client) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid options: %w", err)
	}

	objects, err := loadObjectStore(ctx, cfg, constants.ObjectStoreKind(opts.ObjectStore), opts.Bucket)
	if err != nil {
		return Result{}, err
	}

	var warehouse destination.Warehouse
	if opts.Table != "" {
		warehouse, err = loadWarehouse(ctx, cfg, constants.WarehouseKind(opts.Warehouse), opts.Table, objects)
		if err != nil {
			objects.Close()
			return Result{}, err
		}
	}

	ingester := NewIngester(cfg, objects, warehouse, metricsClient)
	defer ingester.Close()

	return ingester.IngestPeriod(ctx, opts.Period(), opts.Table)
}

func loadObjectStore(ctx context.Context, cfg config.Config, kind constants.ObjectStoreKind, bucket string) (destination.ObjectStore, error) {
	switch kind {
	case constants.GCS:
		return gcslib.NewGCSClient(ctx, cfg.GCS, bucket)
	case constants.S3:
		awsCfg, err := awslib.NewConfig(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return awslib.NewS3Client(awsCfg, bucket)
	default:
		return nil, fmt.Errorf("object store: %q not supported", kind)
	}
}

func loadWarehouse(ctx context.Context, cfg config.Config, kind constants.WarehouseKind, table string, objects destination.ObjectStore) (destination.Warehouse, error) {
	switch kind {
	case constants.BigQuery:
		tableID, err := bqdialect.ParseTableIdentifier(table)
		if err != nil {
			return nil, err
		}
		return bigquery.LoadStore(ctx, cfg, tableID.ProjectID())
	case constants.Postgres:
		store, err := postgres.LoadStore(ctx, cfg.Postgres.Override(config.Postgres{}))
		if err != nil {
			return nil, err
		}
		return postgres.NewWarehouse(store, objects), nil
	default:
		return nil, fmt.Errorf("warehouse: %q not supported", kind)
	}
}
