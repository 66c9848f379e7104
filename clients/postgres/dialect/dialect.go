package dialect

import (
	"fmt"
	"strings"

	"github.com/artie-labs/ingest/lib/sql"
	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

const tableExistsQuery = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`

type PostgresDialect struct{}

func (PostgresDialect) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
}

func (PostgresDialect) DataTypeForKind(kd typing.KindDetails) string {
	switch kd.Kind {
	case typing.Integer.Kind:
		return "BIGINT"
	case typing.Float.Kind:
		return "DOUBLE PRECISION"
	case typing.Boolean.Kind:
		return "BOOLEAN"
	case typing.Date.Kind:
		return "DATE"
	case typing.TimestampNTZ.Kind:
		return "TIMESTAMP"
	case typing.TimestampTZ.Kind:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func (pd PostgresDialect) BuildCreateTableQuery(tableID sql.TableIdentifier, ifNotExists bool, cols []columns.Column) string {
	if ifNotExists {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableID.FullyQualifiedName(), sql.BuildColumnsDefinition(cols, pd))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", tableID.FullyQualifiedName(), sql.BuildColumnsDefinition(cols, pd))
}

func (PostgresDialect) BuildDropTableQuery(tableID sql.TableIdentifier) string {
	return "DROP TABLE IF EXISTS " + tableID.FullyQualifiedName()
}

func (PostgresDialect) BuildTruncateTableQuery(tableID sql.TableIdentifier) string {
	return "TRUNCATE TABLE " + tableID.FullyQualifiedName()
}

func (PostgresDialect) BuildTableExistsQuery(tableID TableIdentifier) (string, []any) {
	return tableExistsQuery, []any{tableID.Schema(), tableID.Table()}
}

// BuildInsertQuery returns a multi-row INSERT with positional parameters for [numRows] rows of [cols].
func (pd PostgresDialect) BuildInsertQuery(tableID sql.TableIdentifier, cols []string, numRows int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES ", tableID.FullyQualifiedName(), strings.Join(sql.QuoteIdentifiers(cols, pd), ",")))

	placeholders := make([]string, len(cols))
	for row := range numRows {
		if row > 0 {
			sb.WriteString(",")
		}

		for col := range cols {
			placeholders[col] = fmt.Sprintf("$%d", row*len(cols)+col+1)
		}
		sb.WriteString("(" + strings.Join(placeholders, ",") + ")")
	}

	return sb.String()
}

func (pd PostgresDialect) BuildDeleteBySourceFileQuery(tableID sql.TableIdentifier, sourceFileColumn string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", tableID.FullyQualifiedName(), pd.QuoteIdentifier(sourceFileColumn))
}

func (pd PostgresDialect) BuildDeclareCursorQuery(cursor string, tableID sql.TableIdentifier, cols []string) string {
	return fmt.Sprintf("DECLARE %s NO SCROLL CURSOR FOR SELECT %s FROM %s", pd.QuoteIdentifier(cursor), strings.Join(sql.QuoteIdentifiers(cols, pd), ","), tableID.FullyQualifiedName())
}

func (pd PostgresDialect) BuildFetchQuery(cursor string, size int) string {
	return fmt.Sprintf("FETCH FORWARD %d FROM %s", size, pd.QuoteIdentifier(cursor))
}

func (pd PostgresDialect) BuildCloseCursorQuery(cursor string) string {
	return "CLOSE " + pd.QuoteIdentifier(cursor)
}
