package httpsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/retry"
)

const (
	jitterBaseMs = 500
	jitterMaxMs  = 10_000
)

// Client fetches public files over HTTP. Bodies are handed back as streams, nothing is buffered in memory.
type Client struct {
	httpClient http.Client
	retryCfg   retry.RetryConfig
}

func NewClient(cfg config.Download) *Client {
	timeout := cfg.Timeout()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// The timeout bounds connecting and waiting for headers, not the transfer itself, monthly files can be large.
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return &Client{
		httpClient: http.Client{Transport: transport},
		retryCfg: retry.NewRetryConfig(retry.NewRetryConfigArgs{
			JitterBaseMs:   jitterBaseMs,
			JitterMaxMs:    jitterMaxMs,
			MaxAttempts:    cfg.MaxAttempts,
			IsRetryableErr: isRetryableError,
		}),
	}
}

// Open issues a GET for [url] and returns the response body, the caller must close it.
// Non-2xx responses are returned as [StatusError].
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return retry.WithRetries(ctx, c.retryCfg, func(attempt int, _ error) (io.ReadCloser, error) {
		return c.open(ctx, url, attempt)
	})
}

func (c *Client) open(ctx context.Context, url string, attempt int) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	slog.Debug("Requesting file", slog.String("url", url), slog.Int("attempt", attempt))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

// DownloadToFile streams [url] into a new temporary file in [dir] and returns its path.
// The file is removed if anything fails, on success removing it is the caller's job.
func (c *Client) DownloadToFile(ctx context.Context, url, dir, pattern string) (string, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(file, body)
	if err != nil {
		file.Close()
		removeFile(file.Name())
		return "", fmt.Errorf("failed to write %q: %w", file.Name(), err)
	}

	if err = file.Close(); err != nil {
		removeFile(file.Name())
		return "", fmt.Errorf("failed to close %q: %w", file.Name(), err)
	}

	slog.Info("Downloaded file", slog.String("url", url), slog.String("path", file.Name()), slog.Int64("bytes", written))
	return file.Name(), nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove temp file", slog.String("path", path), slog.Any("err", err))
	}
}
