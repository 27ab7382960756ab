package filter

import (
	"sort"
	"strings"

	"github.com/stahnma/gh-repostats/internal/metrics"
)

// SortByName is the sort key that orders rows alphabetically.
const SortByName = "name"

// Sort returns a copy of rows ordered by key: "name" sorts ascending by
// repository name, any metric sorts descending with ties broken by name.
func Sort(rows []metrics.Row, key string) ([]metrics.Row, error) {
	out := make([]metrics.Row, len(rows))
	copy(out, rows)

	if key == "" || strings.EqualFold(key, SortByName) {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
		return out, nil
	}

	m, err := metrics.ParseMetric(key)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, _ := out[i].Value(m)
		vj, _ := out[j].Value(m)
		if vi != vj {
			return vi > vj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
