package bigquerylib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/artie-labs/ingest/lib/config"
)

type Client struct {
	client *bigquery.Client
}

func NewClient(ctx context.Context, cfg *config.BigQuery, projectID string, opts ...option.ClientOption) (*Client, error) {
	if cfg != nil && cfg.PathToCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PathToCredentials))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	if cfg != nil && cfg.Location != "" {
		client.Location = cfg.Location
	}

	return &Client{client: client}, nil
}

// CreateTable creates the table if it doesn't exist yet, an existing table is left untouched.
func (c *Client) CreateTable(ctx context.Context, projectID, datasetID, tableID string, metadata *bigquery.TableMetadata) error {
	err := c.client.DatasetInProject(projectID, datasetID).Table(tableID).Create(ctx, metadata)
	if err != nil {
		if IsAlreadyExistsErr(err) {
			slog.Debug("Table already exists", slog.String("dataset", datasetID), slog.String("table", tableID))
			return nil
		}

		return fmt.Errorf("failed to create table %q: %w", tableID, err)
	}

	slog.Info("Created table", slog.String("project", projectID), slog.String("dataset", datasetID), slog.String("table", tableID))
	return nil
}

// LoadFromGCS runs a load job for [ref] into the table and waits for it to finish.
func (c *Client) LoadFromGCS(ctx context.Context, projectID, datasetID, tableID string, ref *bigquery.GCSReference, writeDisposition bigquery.TableWriteDisposition) error {
	loader := c.client.DatasetInProject(projectID, datasetID).Table(tableID).LoaderFrom(ref)
	loader.WriteDisposition = writeDisposition

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run load job: %w", err)
	}

	return waitForJob(ctx, job)
}

// RunQuery runs [query] (which may be a multi-statement script) with named parameters and waits for it to finish.
func (c *Client) RunQuery(ctx context.Context, query string, params []bigquery.QueryParameter) error {
	q := c.client.Query(query)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run query: %w", err)
	}

	return waitForJob(ctx, job)
}

func (c *Client) Close() error {
	return c.client.Close()
}

func waitForJob(ctx context.Context, job *bigquery.Job) error {
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for job %q: %w", job.ID(), err)
	}

	if err = status.Err(); err != nil {
		return fmt.Errorf("job %q failed: %w", job.ID(), err)
	}

	return nil
}

func IsAlreadyExistsErr(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusConflict
	}

	return false
}

// NewCSVReference describes a CSV object with a header row, quoted newlines are allowed.
func NewCSVReference(uri string, schema bigquery.Schema, compressed bool) *bigquery.GCSReference {
	ref := bigquery.NewGCSReference(uri)
	ref.SourceFormat = bigquery.CSV
	ref.SkipLeadingRows = 1
	ref.AllowQuotedNewlines = true
	ref.Schema = schema
	if compressed {
		ref.Compression = bigquery.Gzip
	} else {
		ref.Compression = bigquery.None
	}

	return ref
}
