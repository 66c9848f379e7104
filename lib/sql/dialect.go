package sql

import (
	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/typing"
)

type TableIdentifier interface {
	EscapedTable() string
	Table() string
	WithTable(table string) TableIdentifier
	FullyQualifiedName() string
}

type Dialect interface {
	QuoteIdentifier(identifier string) string
	DataTypeForKind(kd typing.KindDetails) string
}

// StagingTableID returns the staging table that sits next to [tableID].
func StagingTableID(tableID TableIdentifier) TableIdentifier {
	return tableID.WithTable(tableID.Table() + constants.StagingTableSuffix)
}
