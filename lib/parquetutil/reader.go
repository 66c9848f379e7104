package parquetutil

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/artie-labs/ingest/lib/typing/columns"
)

// ReadBatches reads the parquet file at [path] in source order and calls [yield] with batches of at most [batchSize] rows.
// Iteration stops at the first error returned by [yield].
func ReadBatches(ctx context.Context, path string, batchSize int, yield func(batch Batch) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0, got %d", batchSize)
	}

	parquetFile, err := file.OpenParquetFile(path, false)
	if err != nil {
		return fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer parquetFile.Close()

	fileReader, err := pqarrow.NewFileReader(parquetFile, pqarrow.ArrowReadProperties{BatchSize: int64(batchSize)}, memory.NewGoAllocator())
	if err != nil {
		return fmt.Errorf("failed to create arrow reader: %w", err)
	}

	recordReader, err := fileReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create record reader: %w", err)
	}
	defer recordReader.Release()

	cols := ColumnsFromArrowSchema(recordReader.Schema())
	for recordReader.Next() {
		if err = ctx.Err(); err != nil {
			return err
		}

		record := recordReader.Record()
		if record.NumRows() == 0 {
			continue
		}

		if err = yield(recordToBatch(record, cols)); err != nil {
			return err
		}
	}

	if err = recordReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read record batch: %w", err)
	}

	return nil
}

func recordToBatch(record arrow.Record, cols []columns.Column) Batch {
	numRows := int(record.NumRows())
	rows := make([][]any, numRows)
	for rowIdx := range rows {
		rows[rowIdx] = make([]any, len(cols))
	}

	for colIdx, arr := range record.Columns() {
		for rowIdx := range numRows {
			rows[rowIdx][colIdx] = valueAt(arr, rowIdx)
		}
	}

	return Batch{Columns: cols, Rows: rows}
}
