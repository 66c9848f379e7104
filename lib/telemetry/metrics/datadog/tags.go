package datadog

import (
	"maps"
	"slices"
)

// toDatadogTags turns {"month": "03"} into ["month:03"], sorted by key.
func toDatadogTags(tags map[string]string) []string {
	if len(tags) == 0 {
		return nil
	}

	ddTags := make([]string, 0, len(tags))
	for _, key := range slices.Sorted(maps.Keys(tags)) {
		ddTags = append(ddTags, key+":"+tags[key])
	}
	return ddTags
}
