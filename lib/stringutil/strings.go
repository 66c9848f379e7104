package stringutil

import (
	"strings"
)

// Empty returns true if any of the values is empty.
func Empty(vals ...string) bool {
	for _, val := range vals {
		if val == "" {
			return true
		}
	}

	return false
}

// EnsureSuffix appends [suffix] to [value] unless it's already there.
func EnsureSuffix(value, suffix string) string {
	if strings.HasSuffix(value, suffix) {
		return value
	}

	return value + suffix
}
