package sql

import (
	"fmt"
	"strings"

	"github.com/artie-labs/ingest/lib/typing/columns"
)

func QuoteIdentifiers(identifiers []string, dialect Dialect) []string {
	result := make([]string, len(identifiers))
	for i, identifier := range identifiers {
		result[i] = dialect.QuoteIdentifier(identifier)
	}
	return result
}

// BuildColumnsDefinition returns "col_a TYPE,col_b TYPE" for a CREATE TABLE statement.
func BuildColumnsDefinition(cols []columns.Column, dialect Dialect) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s %s", dialect.QuoteIdentifier(col.Name()), dialect.DataTypeForKind(col.KindDetails))
	}
	return strings.Join(parts, ",")
}
