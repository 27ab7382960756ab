package analyzer

import (
	"context"

	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

// DateFormat is the date layout used in reports and export object keys.
const DateFormat = "2006-Jan-02"

// Report is the exported snapshot of one owner.
type Report struct {
	Date          string            `json:"date"`
	Owner         string            `json:"owner"`
	Kind          github.Kind       `json:"kind"`
	Authenticated bool              `json:"authenticated"`
	Repositories  []metrics.Row     `json:"repositories"`
	Summary       []metrics.Summary `json:"summary"`
}

// Report builds a snapshot of owner's repositories and their summaries.
func (a *Analyzer) Report(ctx context.Context, owner string, kind github.Kind) (Report, error) {
	rows, err := a.Repositories(ctx, owner, kind)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Date:          a.now().Format(DateFormat),
		Owner:         owner,
		Kind:          kind,
		Authenticated: a.client.Authenticated(),
		Repositories:  rows,
		Summary:       metrics.SummarizeAll(rows),
	}, nil
}
