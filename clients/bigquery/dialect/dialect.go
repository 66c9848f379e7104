package dialect

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

type BigQueryDialect struct{}

func (BigQueryDialect) QuoteIdentifier(identifier string) string {
	// BigQuery needs backticks to quote.
	return fmt.Sprintf("`%s`", strings.ReplaceAll(identifier, "`", ""))
}

func (BigQueryDialect) DataTypeForKind(kd typing.KindDetails) string {
	return string(FieldTypeForKind(kd))
}

func FieldTypeForKind(kd typing.KindDetails) bigquery.FieldType {
	switch kd.Kind {
	case typing.Integer.Kind:
		return bigquery.IntegerFieldType
	case typing.Float.Kind:
		return bigquery.FloatFieldType
	case typing.Boolean.Kind:
		return bigquery.BooleanFieldType
	case typing.Date.Kind:
		return bigquery.DateFieldType
	case typing.TimestampNTZ.Kind:
		return bigquery.DateTimeFieldType
	case typing.TimestampTZ.Kind:
		return bigquery.TimestampFieldType
	default:
		return bigquery.StringFieldType
	}
}

func BuildSchema(cols []columns.Column) bigquery.Schema {
	schema := make(bigquery.Schema, len(cols))
	for i, col := range cols {
		schema[i] = &bigquery.FieldSchema{Name: col.Name(), Type: FieldTypeForKind(col.KindDetails)}
	}
	return schema
}
