package fhv

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts are tried in order, "1" and "2" accept both padded and unpadded months and days.
var timestampLayouts = []string{
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
}

// ParseTimestamp returns the first layout that parses [value] or nil, it never fails.
func ParseTimestamp(value string) *time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}

	return nil
}

// NullableInt treats empty strings as null and mirrors SAFE_CAST: anything that isn't an integer is null too.
func NullableInt(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}

	return &parsed
}

// TransformRow converts a staging row (ordered as [StageSchema]) into a final row (ordered as [FinalSchema]).
// Nulls are returned as untyped nil so the row can be passed straight to database/sql.
func TransformRow(stage []string, sourceFile string) ([]any, error) {
	if len(stage) != len(StageSchema) {
		return nil, fmt.Errorf("expected %d staging values, got %d", len(StageSchema), len(stage))
	}

	return []any{
		stage[0],
		timeOrNil(ParseTimestamp(stage[1])),
		timeOrNil(ParseTimestamp(stage[2])),
		intOrNil(NullableInt(stage[3])),
		intOrNil(NullableInt(stage[4])),
		intOrNil(NullableInt(stage[5])),
		stage[6],
		sourceFile,
	}, nil
}

func timeOrNil(value *time.Time) any {
	if value == nil {
		return nil
	}

	return *value
}

func intOrNil(value *int64) any {
	if value == nil {
		return nil
	}

	return *value
}
