package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/stahnma/gh-repostats/internal/metrics"
)

// TableOptions controls WriteTable.
type TableOptions struct {
	// Wide adds total traffic, archived and URL columns.
	Wide      bool
	SlackMode bool
}

var (
	baseColumns = []string{"Name", "Stars", "Forks", "Open Issues", "Inactivity Days", "Unique Views", "Unique Clones"}
	wideColumns = []string{"Views", "Clones", "Archived", "URL"}
)

// TableHeaders returns the column headings.
func TableHeaders(wide bool) []string {
	h := append([]string{}, baseColumns...)
	if wide {
		h = append(h, wideColumns...)
	}
	return h
}

// TableRows converts rows into table cells, one slice per repository.
func TableRows(rows []metrics.Row, wide bool) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := []string{
			r.Name,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			strconv.Itoa(r.OpenIssues),
			strconv.Itoa(r.InactivityDays),
			strconv.Itoa(r.UniqueViews),
			strconv.Itoa(r.UniqueClones),
		}
		if wide {
			cells = append(cells,
				strconv.Itoa(r.Views),
				strconv.Itoa(r.Clones),
				yesNo(r.Archived),
				r.URL,
			)
		}
		out = append(out, cells)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// RenderTable renders rows as a bordered table.
func RenderTable(rows []metrics.Row, wide bool) string {
	headers := TableHeaders(wide)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(TableRows(rows, wide)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 || col >= len(baseColumns)+2 {
				return styleCell
			}
			return styleNumber
		})
	return t.Render()
}

// WriteTable writes rows as a table followed by a repository count.
func WriteTable(w io.Writer, rows []metrics.Row, opts TableOptions) error {
	fenced(w, opts.SlackMode, func() {
		fmt.Fprintln(w, RenderTable(rows, opts.Wide))
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d repositories", len(rows))))
	})
	return nil
}

// WriteSummary writes one line of statistics per metric.
func WriteSummary(w io.Writer, summaries []metrics.Summary, slackMode bool) error {
	cells := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		cells = append(cells, []string{
			s.Metric.Label(),
			strconv.Itoa(s.Count),
			num(s.Min),
			num(s.Max),
			num(s.Mean),
			num(s.Median),
			num(s.StdDev),
			num(s.Sum),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Metric", "Count", "Min", "Max", "Mean", "Median", "Std Dev", "Sum").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return styleCell
			}
			return styleNumber
		})

	fenced(w, slackMode, func() {
		fmt.Fprintln(w, t.Render())
	})
	return nil
}

// num formats with two decimals.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
