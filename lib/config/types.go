package config

import (
	"github.com/artie-labs/ingest/lib/config/constants"
)

type Sentry struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

type Reporting struct {
	Sentry *Sentry `yaml:"sentry"`
}

type Datadog struct {
	// Addr of the DogStatsD agent, DD_AGENT_HOST and DD_DOGSTATSD_PORT take precedence when both are set.
	Addr      string   `yaml:"addr"`
	Namespace string   `yaml:"namespace"`
	Tags      []string `yaml:"tags"`
	// SampleRate between 0 (exclusive) and 1, anything else means every metric is sent.
	SampleRate float64 `yaml:"sampleRate"`
}

type Metrics struct {
	Provider constants.ExporterKind `yaml:"provider"`
	Datadog  Datadog                `yaml:"datadog"`
}

type Telemetry struct {
	Metrics Metrics `yaml:"metrics"`
}

type Source struct {
	FHVBaseURL    string `yaml:"fhvBaseURL"`
	TripBaseURL   string `yaml:"tripBaseURL"`
	ZoneLookupURL string `yaml:"zoneLookupURL"`
}

type Download struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`
	// MaxAttempts - the number of times a single file is requested before giving up. Defaults to 1 (no retries).
	MaxAttempts int `yaml:"maxAttempts"`
	// TempDir - where columnar files are staged before they are read. Defaults to [os.TempDir].
	TempDir string `yaml:"tempDir"`
}

type BigQuery struct {
	// PathToCredentials is _optional_ if you have GOOGLE_APPLICATION_CREDENTIALS set as an env var
	// Links to credentials: https://cloud.google.com/docs/authentication/application-default-credentials#GAC
	PathToCredentials string `yaml:"pathToCredentials"`
	ProjectID         string `yaml:"projectID"`
	Location          string `yaml:"location"`
}

type GCSSettings struct {
	PathToCredentials string `yaml:"pathToCredentials"`
	ProjectID         string `yaml:"projectID"`
}

type S3Settings struct {
	AwsAccessKeyID     string `yaml:"awsAccessKeyID"`
	AwsSecretAccessKey string `yaml:"awsSecretAccessKey"`
	AwsRegion          string `yaml:"awsRegion"`
}

type Postgres struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	DisableSSL bool   `yaml:"disableSSL"`
	// MaxAttempts - how many times a statement is sent when the connection drops. Defaults to 1 (no retries).
	MaxAttempts int `yaml:"maxAttempts"`
}

type Config struct {
	Source   Source   `yaml:"source"`
	Download Download `yaml:"download"`

	BigQuery *BigQuery    `yaml:"bigquery,omitempty"`
	GCS      *GCSSettings `yaml:"gcs,omitempty"`
	S3       *S3Settings  `yaml:"s3,omitempty"`
	Postgres *Postgres    `yaml:"postgres,omitempty"`

	Reporting Reporting `yaml:"reporting"`
	Telemetry Telemetry `yaml:"telemetry"`
}
