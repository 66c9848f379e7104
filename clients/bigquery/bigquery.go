package bigquery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/artie-labs/ingest/clients/bigquery/dialect"
	"github.com/artie-labs/ingest/lib/bigquerylib"
	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/destination"
	"github.com/artie-labs/ingest/lib/sql"
	"github.com/artie-labs/ingest/lib/tripdata/fhv"
)

type client interface {
	CreateTable(ctx context.Context, projectID, datasetID, tableID string, metadata *bigquery.TableMetadata) error
	LoadFromGCS(ctx context.Context, projectID, datasetID, tableID string, ref *bigquery.GCSReference, writeDisposition bigquery.TableWriteDisposition) error
	RunQuery(ctx context.Context, query string, params []bigquery.QueryParameter) error
	Close() error
}

type Store struct {
	client  client
	dialect dialect.BigQueryDialect
}

func LoadStore(ctx context.Context, cfg config.Config, projectID string) (*Store, error) {
	bqClient, err := bigquerylib.NewClient(ctx, cfg.BigQuery, projectID)
	if err != nil {
		return nil, err
	}

	return &Store{client: bqClient}, nil
}

func (s *Store) ParseTableID(value string) (sql.TableIdentifier, error) {
	return dialect.ParseTableIdentifier(value)
}

func castTableID(tableID sql.TableIdentifier) (dialect.TableIdentifier, error) {
	castedTableID, ok := tableID.(dialect.TableIdentifier)
	if !ok {
		return dialect.TableIdentifier{}, fmt.Errorf("expected a bigquery table identifier, got %T", tableID)
	}
	return castedTableID, nil
}

func finalTableMetadata() *bigquery.TableMetadata {
	return &bigquery.TableMetadata{
		Schema: dialect.BuildSchema(fhv.FinalSchema),
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: fhv.PartitionField,
		},
		Clustering: &bigquery.Clustering{Fields: fhv.ClusteringFields},
	}
}

func (s *Store) EnsureTables(ctx context.Context, finalTableID, stagingTableID sql.TableIdentifier) error {
	final, err := castTableID(finalTableID)
	if err != nil {
		return err
	}

	stage, err := castTableID(stagingTableID)
	if err != nil {
		return err
	}

	if err = s.client.CreateTable(ctx, final.ProjectID(), final.Dataset(), final.Table(), finalTableMetadata()); err != nil {
		return fmt.Errorf("failed to create final table: %w", err)
	}

	// Staging is not partitioned, it is overwritten on every load.
	if err = s.client.CreateTable(ctx, stage.ProjectID(), stage.Dataset(), stage.Table(), &bigquery.TableMetadata{Schema: dialect.BuildSchema(fhv.StageSchema)}); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	slog.Info("Ensured BigQuery tables", slog.String("final", final.FullyQualifiedName()), slog.String("stage", stage.FullyQualifiedName()))
	return nil
}

func (s *Store) LoadStaging(ctx context.Context, object destination.Object, stagingTableID sql.TableIdentifier) error {
	if !strings.HasPrefix(object.URI, "gs://") {
		return fmt.Errorf("bigquery can only load objects from GCS, got %q", object.URI)
	}

	stage, err := castTableID(stagingTableID)
	if err != nil {
		return err
	}

	ref := bigquerylib.NewCSVReference(object.URI, dialect.BuildSchema(fhv.StageSchema), strings.HasSuffix(object.URI, ".gz"))
	if err = s.client.LoadFromGCS(ctx, stage.ProjectID(), stage.Dataset(), stage.Table(), ref, bigquery.WriteTruncate); err != nil {
		return fmt.Errorf("failed to load %q into %q: %w", object.URI, stage.FullyQualifiedName(), err)
	}

	slog.Info("Loaded to staging", slog.String("table", stage.FullyQualifiedName()), slog.String("uri", object.URI))
	return nil
}

func (s *Store) Merge(ctx context.Context, stagingTableID, finalTableID sql.TableIdentifier, sourceFile string) error {
	if _, err := castTableID(stagingTableID); err != nil {
		return err
	}

	if _, err := castTableID(finalTableID); err != nil {
		return err
	}

	script := s.dialect.BuildMergeScript(stagingTableID, finalTableID)
	params := []bigquery.QueryParameter{{Name: dialect.SourceFileParam, Value: sourceFile}}
	if err := s.client.RunQuery(ctx, script, params); err != nil {
		return fmt.Errorf("failed to merge %q into %q: %w", stagingTableID.FullyQualifiedName(), finalTableID.FullyQualifiedName(), err)
	}

	slog.Info("Transformed & loaded final", slog.String("table", finalTableID.FullyQualifiedName()), slog.String("sourceFile", sourceFile))
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
