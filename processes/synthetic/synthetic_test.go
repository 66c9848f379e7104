package synthetic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/ingest/lib/parquetutil"
	"github.com/artie-labs/ingest/lib/typing"
)

func TestGenerate(t *testing.T) {
	for _, n := range []int{0, 1, 5, 1000} {
		ids, values, err := Generate(n)
		assert.NoError(t, err)
		assert.Len(t, ids, n)
		assert.Len(t, values, n)
		for i := range n {
			assert.Equal(t, int64(i+1), ids[i])
			assert.Equal(t, ids[i]*10, values[i])
		}
	}

	_, _, err := Generate(-1)
	assert.ErrorContains(t, err, "number of rows cannot be negative, got -1")
}

func TestRun(t *testing.T) {
	{
		outputPath := filepath.Join(t.TempDir(), "output.parquet")
		require.NoError(t, Run(t.Context(), Options{NumRows: 5, OutputPath: outputPath}))

		var rows [][]any
		assert.NoError(t, parquetutil.ReadBatches(t.Context(), outputPath, 100, func(batch parquetutil.Batch) error {
			assert.Equal(t, "id", batch.Columns[0].Name())
			assert.Equal(t, typing.Integer, batch.Columns[0].KindDetails)
			assert.Equal(t, "value", batch.Columns[1].Name())
			rows = append(rows, batch.Rows...)
			return nil
		}))

		assert.Equal(t, [][]any{
			{int64(1), int64(10)},
			{int64(2), int64(20)},
			{int64(3), int64(30)},
			{int64(4), int64(40)},
			{int64(5), int64(50)},
		}, rows)
	}
	{
		// Zero rows still writes a readable file
		outputPath := filepath.Join(t.TempDir(), "empty.parquet")
		require.NoError(t, Run(t.Context(), Options{NumRows: 0, OutputPath: outputPath}))

		var numRows int
		assert.NoError(t, parquetutil.ReadBatches(t.Context(), outputPath, 100, func(batch parquetutil.Batch) error {
			numRows += batch.NumberOfRows()
			return nil
		}))
		assert.Zero(t, numRows)
	}
	{
		assert.ErrorContains(t, Run(t.Context(), Options{NumRows: -3, OutputPath: filepath.Join(t.TempDir(), "x.parquet")}), "cannot be negative")
	}
	{
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		assert.ErrorIs(t, Run(ctx, Options{NumRows: 1}), context.Canceled)
	}
}
