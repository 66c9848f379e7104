package fhv

import (
	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

// Staging keeps datetimes as strings to avoid load failures due to formatting quirks.
var StageSchema = []columns.Column{
	columns.NewColumn("dispatching_base_num", typing.String),
	columns.NewColumn("pickup_datetime", typing.String),
	columns.NewColumn("dropOff_datetime", typing.String),
	columns.NewColumn("PUlocationID", typing.String),
	columns.NewColumn("DOlocationID", typing.String),
	columns.NewColumn("SR_Flag", typing.String),
	columns.NewColumn("Affiliated_base_number", typing.String),
}

var FinalSchema = []columns.Column{
	columns.NewColumn("dispatching_base_num", typing.String),
	columns.NewColumn("pickup_datetime", typing.TimestampTZ),
	columns.NewColumn("dropoff_datetime", typing.TimestampTZ),
	columns.NewColumn("pickup_location_id", typing.Integer),
	columns.NewColumn("dropoff_location_id", typing.Integer),
	columns.NewColumn("sr_flag", typing.Integer),
	columns.NewColumn("affiliated_base_number", typing.String),
	columns.NewColumn(constants.SourceFileColumn, typing.String),
}

const PartitionField = "pickup_datetime"

var ClusteringFields = []string{"dispatching_base_num", "pickup_location_id", "dropoff_location_id"}
