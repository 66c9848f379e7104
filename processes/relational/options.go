package relational

import (
	"fmt"

	"github.com/artie-labs/ingest/clients/postgres/dialect"
	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/tripdata"
)

// Options are the relational command's flags, Postgres flags that are left empty fall back to the config file.
type Options struct {
	PGUser string `long:"pg-user" description:"Postgres username (default: root)"`
	PGPass string `long:"pg-pass" description:"Postgres password (default: root)"`
	PGHost string `long:"pg-host" description:"Postgres host (default: localhost)"`
	PGPort int    `long:"pg-port" description:"Postgres port (default: 5432)"`
	PGDB   string `long:"pg-db" description:"Postgres database (default: ny_taxi)"`

	Year        int    `long:"year" default:"2021" description:"year of the trip data"`
	Month       int    `long:"month" default:"1" description:"month of the trip data"`
	ChunkSize   int    `long:"chunksize" default:"100000" description:"number of rows read and appended at a time"`
	TargetTable string `long:"target-table" default:"yellow_taxi_data" description:"table the trip data is appended to"`
	Dataset     string `long:"dataset" default:"green" choice:"green" choice:"yellow" description:"trip dataset to download"`
	ZonesTable  string `long:"zones-table" default:"taxi_zones" description:"table the zone lookup replaces"`
}

func (o Options) Postgres(cfg *config.Postgres) config.Postgres {
	return cfg.Override(config.Postgres{
		Host:     o.PGHost,
		Port:     o.PGPort,
		Username: o.PGUser,
		Password: o.PGPass,
		Database: o.PGDB,
	})
}

func (o Options) Validate() error {
	if err := tripdata.ValidateYear(o.Year); err != nil {
		return err
	}

	if _, err := tripdata.ParseMonth(o.Month); err != nil {
		return err
	}

	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunksize must be greater than 0, got %d", o.ChunkSize)
	}

	dataset := tripdata.Dataset(o.Dataset)
	if !dataset.IsValid() {
		return fmt.Errorf("invalid dataset %q, expected %q or %q", o.Dataset, tripdata.Green, tripdata.Yellow)
	}

	if dataset == tripdata.FHV {
		return fmt.Errorf("dataset %q is only published as CSV, expected %q or %q", o.Dataset, tripdata.Green, tripdata.Yellow)
	}

	for _, table := range []string{o.TargetTable, o.ZonesTable} {
		if _, err := dialect.ParseTableIdentifier(table); err != nil {
			return err
		}
	}

	return nil
}
