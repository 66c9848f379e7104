package parquetutil

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

// Batch is a chunk of rows read from a columnar file, values are ordered the same way as [Batch.Columns].
type Batch struct {
	Columns []columns.Column
	Rows    [][]any
}

func (b Batch) NumberOfRows() int {
	return len(b.Rows)
}

func KindForArrowType(dataType arrow.DataType) typing.KindDetails {
	switch dataType.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64, arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return typing.Integer
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return typing.Float
	case arrow.BOOL:
		return typing.Boolean
	case arrow.TIMESTAMP:
		if tsType, ok := dataType.(*arrow.TimestampType); ok && tsType.TimeZone != "" {
			return typing.TimestampTZ
		}
		return typing.TimestampNTZ
	case arrow.DATE32, arrow.DATE64:
		return typing.Date
	default:
		// Strings, decimals, uint64 and anything nested are carried as text, uint64 can overflow BIGINT.
		return typing.String
	}
}

func ColumnsFromArrowSchema(schema *arrow.Schema) []columns.Column {
	cols := make([]columns.Column, schema.NumFields())
	for i, field := range schema.Fields() {
		cols[i] = columns.NewColumn(field.Name, KindForArrowType(field.Type))
	}
	return cols
}

func arrowTypeForKind(kd typing.KindDetails) (arrow.DataType, error) {
	switch kd.Kind {
	case typing.Integer.Kind:
		return arrow.PrimitiveTypes.Int64, nil
	case typing.Float.Kind:
		return arrow.PrimitiveTypes.Float64, nil
	case typing.Boolean.Kind:
		return arrow.FixedWidthTypes.Boolean, nil
	case typing.String.Kind:
		return arrow.BinaryTypes.String, nil
	case typing.Date.Kind:
		return arrow.FixedWidthTypes.Date32, nil
	case typing.TimestampNTZ.Kind:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case typing.TimestampTZ.Kind:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", kd.Kind)
	}
}

func BuildArrowSchemaFromColumns(cols []columns.Column) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		dataType, err := arrowTypeForKind(col.KindDetails)
		if err != nil {
			return nil, fmt.Errorf("failed to build arrow type for column %q: %w", col.Name(), err)
		}

		fields[i] = arrow.Field{Name: col.Name(), Type: dataType, Nullable: true}
	}

	return arrow.NewSchema(fields, nil), nil
}
