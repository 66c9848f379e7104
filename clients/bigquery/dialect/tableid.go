package dialect

import (
	"fmt"
	"strings"

	"github.com/artie-labs/ingest/lib/sql"
)

var _dialect = BigQueryDialect{}

type TableIdentifier struct {
	projectID string
	dataset   string
	table     string
}

func NewTableIdentifier(projectID, dataset, table string) TableIdentifier {
	return TableIdentifier{
		projectID: projectID,
		dataset:   dataset,
		table:     table,
	}
}

// ParseTableIdentifier parses "project.dataset.table".
func ParseTableIdentifier(value string) (TableIdentifier, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return TableIdentifier{}, fmt.Errorf("invalid table %q, expected project.dataset.table", value)
	}

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return TableIdentifier{}, fmt.Errorf("invalid table %q, expected project.dataset.table", value)
		}
	}

	return NewTableIdentifier(parts[0], parts[1], parts[2]), nil
}

func (ti TableIdentifier) ProjectID() string {
	return ti.projectID
}

func (ti TableIdentifier) Dataset() string {
	return ti.dataset
}

func (ti TableIdentifier) EscapedTable() string {
	return _dialect.QuoteIdentifier(ti.table)
}

func (ti TableIdentifier) Table() string {
	return ti.table
}

func (ti TableIdentifier) WithTable(table string) sql.TableIdentifier {
	return NewTableIdentifier(ti.projectID, ti.dataset, table)
}

func (ti TableIdentifier) FullyQualifiedName() string {
	// The fully qualified name for BigQuery is: project_id.dataset.tableName.
	// We are escaping the project_id, dataset, and table because there could be special characters.
	return fmt.Sprintf("%s.%s.%s", _dialect.QuoteIdentifier(ti.projectID), _dialect.QuoteIdentifier(ti.dataset), ti.EscapedTable())
}
