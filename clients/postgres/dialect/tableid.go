package dialect

import (
	"fmt"
	"strings"

	"github.com/artie-labs/ingest/lib/sql"
)

const DefaultSchema = "public"

var _dialect = PostgresDialect{}

type TableIdentifier struct {
	schema string
	table  string
}

func NewTableIdentifier(schema, table string) TableIdentifier {
	return TableIdentifier{schema: schema, table: table}
}

// ParseTableIdentifier accepts "schema.table" or "table", the latter lives in [DefaultSchema].
func ParseTableIdentifier(value string) (TableIdentifier, error) {
	parts := strings.Split(value, ".")
	switch len(parts) {
	case 1:
		if parts[0] != "" {
			return NewTableIdentifier(DefaultSchema, parts[0]), nil
		}
	case 2:
		if parts[0] != "" && parts[1] != "" {
			return NewTableIdentifier(parts[0], parts[1]), nil
		}
	}

	return TableIdentifier{}, fmt.Errorf("invalid table %q, expected schema.table or table", value)
}

func (ti TableIdentifier) Schema() string {
	return ti.schema
}

func (ti TableIdentifier) EscapedTable() string {
	return _dialect.QuoteIdentifier(ti.table)
}

func (ti TableIdentifier) Table() string {
	return ti.table
}

func (ti TableIdentifier) WithTable(table string) sql.TableIdentifier {
	return NewTableIdentifier(ti.schema, table)
}

func (ti TableIdentifier) FullyQualifiedName() string {
	return fmt.Sprintf("%s.%s", _dialect.QuoteIdentifier(ti.schema), ti.EscapedTable())
}
