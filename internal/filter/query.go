package filter

import "github.com/stahnma/gh-repostats/internal/metrics"

// Query is a filter-then-sort request as given on the command line or in
// a URL query string.
type Query struct {
	Filters []string
	Sort    string
}

// Run parses the filters, applies them to rows and sorts the result.
func (q Query) Run(rows []metrics.Row) ([]metrics.Row, error) {
	preds, err := ParseAll(q.Filters)
	if err != nil {
		return nil, err
	}
	return Sort(Apply(rows, preds), q.Sort)
}
