package columns

import (
	"github.com/artie-labs/ingest/lib/typing"
)

type Column struct {
	name        string
	KindDetails typing.KindDetails
}

func NewColumn(name string, kd typing.KindDetails) Column {
	return Column{
		name:        name,
		KindDetails: kd,
	}
}

func (c Column) Name() string {
	return c.name
}

func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name()
	}

	return names
}

// Equal returns true if both sets have the same column names and kinds, in the same order.
func Equal(a, b []Column) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].name != b[i].name || a[i].KindDetails != b[i].KindDetails {
			return false
		}
	}

	return true
}
