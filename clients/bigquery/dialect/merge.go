package dialect

import (
	"fmt"
	"strings"

	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/sql"
	"github.com/artie-labs/ingest/lib/tripdata/fhv"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

// SourceFileParam is the named query parameter holding the source file key.
const SourceFileParam = "source_file"

// Mirrors [fhv.ParseTimestamp], the first layout that parses wins.
var timestampFormats = []string{"%Y-%m-%d %H:%M:%S", "%Y-%m-%d %H:%M"}

func (bd BigQueryDialect) parseTimestampExpression(column string) string {
	parts := make([]string, len(timestampFormats))
	for i, format := range timestampFormats {
		parts[i] = fmt.Sprintf("SAFE.PARSE_TIMESTAMP('%s', %s)", format, bd.QuoteIdentifier(column))
	}
	return fmt.Sprintf("COALESCE(%s)", strings.Join(parts, ", "))
}

// Mirrors [fhv.NullableInt].
func (bd BigQueryDialect) nullableIntExpression(column string) string {
	return fmt.Sprintf("SAFE_CAST(NULLIF(%s, '') AS INT64)", bd.QuoteIdentifier(column))
}

// BuildMergeQueries returns exactly two statements: a DELETE scoped to @source_file followed by an INSERT of the transformed staging rows.
// Running them again for the same source file replaces the rows instead of appending.
func (bd BigQueryDialect) BuildMergeQueries(stagingTableID, finalTableID sql.TableIdentifier) []string {
	stage := columns.ColumnNames(fhv.StageSchema)
	selectExpressions := []string{
		bd.QuoteIdentifier(stage[0]),
		bd.parseTimestampExpression(stage[1]),
		bd.parseTimestampExpression(stage[2]),
		bd.nullableIntExpression(stage[3]),
		bd.nullableIntExpression(stage[4]),
		bd.nullableIntExpression(stage[5]),
		bd.QuoteIdentifier(stage[6]),
		"@" + SourceFileParam,
	}

	finalCols := columns.ColumnNames(fhv.FinalSchema)
	for i := range selectExpressions {
		selectExpressions[i] = fmt.Sprintf("%s AS %s", selectExpressions[i], bd.QuoteIdentifier(finalCols[i]))
	}

	return []string{
		fmt.Sprintf("DELETE FROM %s WHERE %s = @%s",
			finalTableID.FullyQualifiedName(), bd.QuoteIdentifier(constants.SourceFileColumn), SourceFileParam,
		),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			finalTableID.FullyQualifiedName(),
			strings.Join(sql.QuoteIdentifiers(finalCols, bd), ","),
			strings.Join(selectExpressions, ","),
			stagingTableID.FullyQualifiedName(),
		),
	}
}

// BuildMergeScript joins [BuildMergeQueries] into a single multi-statement script so both run as one job.
func (bd BigQueryDialect) BuildMergeScript(stagingTableID, finalTableID sql.TableIdentifier) string {
	return strings.Join(bd.BuildMergeQueries(stagingTableID, finalTableID), ";\n") + ";"
}
