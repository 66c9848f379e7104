package awslib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

type S3Client struct {
	bucket   string
	client   *s3.Client
	uploader *manager.Uploader
}

func NewS3Client(cfg aws.Config, bucket string, optFns ...func(*s3.Options)) (*S3Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}

	client := s3.NewFromConfig(cfg, optFns...)
	return &S3Client{
		bucket:   bucket,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (s *S3Client) URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

func (s *S3Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotFoundError(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to head %q: %w", s.URI(key), err)
	}

	return true, nil
}

// Upload goes through [manager.Uploader] so bodies of unknown length are sent in parts instead of being buffered.
func (s *S3Client) Upload(ctx context.Context, key string, body io.Reader) error {
	output, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to s3: %w", err)
	}

	slog.Info("Uploaded object", slog.String("uri", s.URI(key)), slog.String("location", output.Location))
	return nil
}

func (s *S3Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", s.URI(key), err)
	}

	return output.Body, nil
}

func (s *S3Client) Close() error {
	return nil
}

func IsNotFoundError(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusNotFound
	}

	return false
}
