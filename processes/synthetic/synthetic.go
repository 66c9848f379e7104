package synthetic

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"

	"github.com/artie-labs/ingest/lib/parquetutil"
	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

const (
	DefaultNumRows    = 5
	DefaultOutputPath = "output.parquet"
)

var schema = []columns.Column{
	columns.NewColumn("id", typing.Integer),
	columns.NewColumn("value", typing.Integer),
}

type Options struct {
	NumRows    int
	OutputPath string
}

// Generate returns ids 1..n and their values, each value is the id multiplied by 10.
func Generate(n int) ([]int64, []int64, error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("number of rows cannot be negative, got %d", n)
	}

	ids := make([]int64, n)
	values := make([]int64, n)
	for i := range n {
		ids[i] = int64(i + 1)
		values[i] = ids[i] * 10
	}

	return ids, values, nil
}

func Run(ctx context.Context, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids, values, err := Generate(opts.NumRows)
	if err != nil {
		return err
	}

	rows := make([][]any, len(ids))
	for i := range ids {
		rows[i] = []any{ids[i], values[i]}
	}

	outputPath := cmp.Or(opts.OutputPath, DefaultOutputPath)
	if err = parquetutil.WriteFile(outputPath, parquetutil.Batch{Columns: schema, Rows: rows}); err != nil {
		return fmt.Errorf("failed to write %q: %w", outputPath, err)
	}

	slog.Info(fmt.Sprintf("Wrote %d rows to %s", len(rows), outputPath))
	return nil
}
