package parquetutil

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// WriteFile writes [batch] as a single row group to a new parquet file at [filePath].
func WriteFile(filePath string, batch Batch) error {
	arrowSchema, err := BuildArrowSchemaFromColumns(batch.Columns)
	if err != nil {
		return fmt.Errorf("failed to generate arrow schema: %w", err)
	}

	record, err := buildRecord(arrowSchema, batch)
	if err != nil {
		return err
	}
	defer record.Release()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer, err := pqarrow.NewFileWriter(arrowSchema, file, parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err = writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}

	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	return nil
}

func buildRecord(schema *arrow.Schema, batch Batch) (arrow.Record, error) {
	pool := memory.NewGoAllocator()
	builders := make([]array.Builder, schema.NumFields())
	for i, field := range schema.Fields() {
		builders[i] = array.NewBuilder(pool, field.Type)
	}
	defer func() {
		for _, builder := range builders {
			builder.Release()
		}
	}()

	for rowIdx, row := range batch.Rows {
		if len(row) != len(batch.Columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", rowIdx, len(row), len(batch.Columns))
		}

		for colIdx, value := range row {
			if err := appendValue(builders[colIdx], value); err != nil {
				return nil, fmt.Errorf("failed to append value for column %q: %w", batch.Columns[colIdx].Name(), err)
			}
		}
	}

	arrays := make([]arrow.Array, len(builders))
	for i, builder := range builders {
		arrays[i] = builder.NewArray()
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	return array.NewRecord(schema, arrays, int64(len(batch.Rows))), nil
}
