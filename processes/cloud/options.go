package cloud

import (
	"fmt"

	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/tripdata"
)

type Options struct {
	Bucket      string `long:"bucket" required:"true" description:"bucket the monthly files are uploaded to"`
	Year        int    `long:"year" required:"true" description:"year of the FHV data, e.g. 2019"`
	Month       *int   `long:"month" description:"month (1-12), the whole year is loaded if omitted"`
	Table       string `long:"bq-table" description:"final table, project.dataset.table for BigQuery or schema.table for Postgres, nothing is loaded into a warehouse if omitted"`
	ObjectStore string `long:"object-store" default:"gcs" choice:"gcs" choice:"s3" description:"where the monthly files are uploaded"`
	Warehouse   string `long:"warehouse" default:"bigquery" choice:"bigquery" choice:"postgres" description:"warehouse the files are loaded into"`
}

func (o Options) Period() Period {
	return Period{Year: o.Year, Month: o.Month}
}

func (o Options) Validate() error {
	if o.Bucket == "" {
		return fmt.Errorf("bucket cannot be empty")
	}

	if _, err := o.Period().Months(); err != nil {
		return err
	}

	objectStore := constants.ObjectStoreKind(o.ObjectStore)
	if !constants.IsValidObjectStore(objectStore) {
		return fmt.Errorf("invalid object store: %q", o.ObjectStore)
	}

	if o.Table == "" {
		return nil
	}

	warehouse := constants.WarehouseKind(o.Warehouse)
	if !constants.IsValidWarehouse(warehouse) {
		return fmt.Errorf("invalid warehouse: %q", o.Warehouse)
	}

	// BigQuery load jobs can only read from GCS.
	if warehouse == constants.BigQuery && objectStore != constants.GCS {
		return fmt.Errorf("the bigquery warehouse requires the gcs object store, got %q", o.ObjectStore)
	}

	return nil
}

// Period is a whole year, or a single month when [Period.Month] is set.
type Period struct {
	Year  int
	Month *int
}

// Months validates the period and returns its months in calendar order.
func (p Period) Months() ([]tripdata.Month, error) {
	if err := tripdata.ValidateYear(p.Year); err != nil {
		return nil, err
	}

	return tripdata.Months(p.Month)
}
