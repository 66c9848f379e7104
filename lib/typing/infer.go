package typing

import (
	"fmt"
	"strconv"
	"strings"
)

// InferKind looks at every non-empty value of a text column and picks the narrowest kind that fits all of them.
// Columns that only contain empty values are treated as strings.
func InferKind(values []string) KindDetails {
	kind := Invalid
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		valueKind := inferValueKind(value)
		switch {
		case kind == Invalid:
			kind = valueKind
		case kind == valueKind:
		case (kind == Integer && valueKind == Float) || (kind == Float && valueKind == Integer):
			kind = Float
		default:
			return String
		}
	}

	if kind == Invalid {
		return String
	}

	return kind
}

func inferValueKind(value string) KindDetails {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return Integer
	}

	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return Float
	}

	return String
}

// ParseString converts a text value into the Go value for [kd], empty values are null.
func ParseString(value string, kd KindDetails) (any, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	switch kd.Kind {
	case Integer.Kind:
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as an integer: %w", value, err)
		}
		return parsed, nil
	case Float.Kind:
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as a float: %w", value, err)
		}
		return parsed, nil
	case String.Kind:
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", kd.Kind)
	}
}
