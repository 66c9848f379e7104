package parquetutil

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// valueAt returns the Go value of [arr] at [idx]: int64, float64, bool, string, time.Time or nil.
// The value always matches [KindForArrowType] of the array's type.
func valueAt(arr arrow.Array, idx int) any {
	if arr.IsNull(idx) {
		return nil
	}

	switch castedArr := arr.(type) {
	case *array.Int8:
		return int64(castedArr.Value(idx))
	case *array.Int16:
		return int64(castedArr.Value(idx))
	case *array.Int32:
		return int64(castedArr.Value(idx))
	case *array.Int64:
		return castedArr.Value(idx)
	case *array.Uint8:
		return int64(castedArr.Value(idx))
	case *array.Uint16:
		return int64(castedArr.Value(idx))
	case *array.Uint32:
		return int64(castedArr.Value(idx))
	case *array.Uint64:
		return strconv.FormatUint(castedArr.Value(idx), 10)
	case *array.Float16:
		return float64(castedArr.Value(idx).Float32())
	case *array.Float32:
		return float64(castedArr.Value(idx))
	case *array.Float64:
		return castedArr.Value(idx)
	case *array.Boolean:
		return castedArr.Value(idx)
	case *array.String:
		return castedArr.Value(idx)
	case *array.LargeString:
		return castedArr.Value(idx)
	case *array.Timestamp:
		unit := castedArr.DataType().(*arrow.TimestampType).Unit
		return castedArr.Value(idx).ToTime(unit)
	case *array.Date32:
		return castedArr.Value(idx).ToTime()
	case *array.Date64:
		return castedArr.Value(idx).ToTime()
	default:
		return arr.ValueStr(idx)
	}
}

func appendValue(builder array.Builder, value any) error {
	if value == nil {
		builder.AppendNull()
		return nil
	}

	switch castedBuilder := builder.(type) {
	case *array.Int64Builder:
		castedValue, ok := value.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", value)
		}
		castedBuilder.Append(castedValue)
	case *array.Float64Builder:
		castedValue, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", value)
		}
		castedBuilder.Append(castedValue)
	case *array.BooleanBuilder:
		castedValue, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		castedBuilder.Append(castedValue)
	case *array.StringBuilder:
		castedValue, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		castedBuilder.Append(castedValue)
	case *array.Date32Builder:
		castedValue, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", value)
		}
		castedBuilder.Append(arrow.Date32FromTime(castedValue))
	case *array.TimestampBuilder:
		castedValue, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", value)
		}
		castedBuilder.Append(arrow.Timestamp(castedValue.UnixMicro()))
	default:
		return fmt.Errorf("unsupported builder %T", builder)
	}

	return nil
}
