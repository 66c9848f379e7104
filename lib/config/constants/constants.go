package constants

import "time"

const (
	// StagingTableSuffix is appended to the final table name to derive its staging table.
	StagingTableSuffix = "__stage"
	// SourceFileColumn is the idempotency key on every final table.
	SourceFileColumn = "source_file"

	DefaultDownloadTimeout = 60 * time.Second
)

// Public endpoints the NYC TLC datasets are mirrored at.
const (
	DefaultFHVBaseURL    = "https://github.com/DataTalksClub/nyc-tlc-data/releases/download/fhv/"
	DefaultTripBaseURL   = "https://d37ci6vzurychx.cloudfront.net/trip-data"
	DefaultZoneLookupURL = "https://github.com/DataTalksClub/nyc-tlc-data/releases/download/misc/taxi_zone_lookup.csv"
)

// ExporterKind is used for the Telemetry package
type ExporterKind string

const (
	Datadog ExporterKind = "datadog"
)

type ObjectStoreKind string

const (
	GCS ObjectStoreKind = "gcs"
	S3  ObjectStoreKind = "s3"
)

func IsValidObjectStore(kind ObjectStoreKind) bool {
	return kind == GCS || kind == S3
}

type WarehouseKind string

const (
	BigQuery WarehouseKind = "bigquery"
	Postgres WarehouseKind = "postgres"
)

func IsValidWarehouse(kind WarehouseKind) bool {
	return kind == BigQuery || kind == Postgres
}
