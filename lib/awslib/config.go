package awslib

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/artie-labs/ingest/lib/config"
)

// NewConfig uses static credentials when they are configured and falls back to the default credential chain otherwise.
func NewConfig(ctx context.Context, settings *config.S3Settings) (aws.Config, error) {
	if err := settings.Validate(); err != nil {
		return aws.Config{}, err
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(settings.AwsRegion)}
	if settings.AwsAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AwsAccessKeyID, settings.AwsSecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed loading aws config: %w", err)
	}

	return cfg, nil
}
