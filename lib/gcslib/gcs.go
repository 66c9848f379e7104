package gcslib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/artie-labs/ingest/lib/config"
)

type GCSClient struct {
	client *storage.Client
	bucket string
}

func NewGCSClient(ctx context.Context, cfg *config.GCSSettings, bucket string, opts ...option.ClientOption) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}

	if cfg != nil && cfg.PathToCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PathToCredentials))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{client: client, bucket: bucket}, nil
}

func (g *GCSClient) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", g.bucket, key)
}

func (g *GCSClient) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := g.client.Bucket(g.bucket).Object(key).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get attributes for %q: %w", g.URI(key), err)
	}

	return true, nil
}

// Upload streams [body] into [key]. If [body] fails before EOF the upload is aborted and nothing is committed.
func (g *GCSClient) Upload(ctx context.Context, key string, body io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	written, err := io.Copy(writer, body)
	if err != nil {
		// Cancelling before Close aborts the upload, otherwise the buffered bytes would be finalized.
		cancel()
		writer.Close()
		return fmt.Errorf("failed to write file to GCS: %w", err)
	}

	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}

	slog.Info("Uploaded object", slog.String("uri", g.URI(key)), slog.Int64("bytes", written))
	return nil
}

func (g *GCSClient) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", g.URI(key), err)
	}

	return reader, nil
}

func (g *GCSClient) Close() error {
	return g.client.Close()
}
