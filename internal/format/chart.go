package format

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stahnma/gh-repostats/internal/metrics"
)

// DefaultBarWidth is the width of the longest bar in characters.
const DefaultBarWidth = 40

const barChar = "█"

// ChartOptions controls WriteBars and WriteHistogram.
type ChartOptions struct {
	Width     int
	SlackMode bool
}

func (o ChartOptions) width() int {
	if o.Width <= 0 {
		return DefaultBarWidth
	}
	return o.Width
}

// barLine is one labelled bar before rendering.
type barLine struct {
	label string
	value float64
	text  string
}

// RenderBars draws one bar per repository for metric m, scaled so the
// largest value spans width characters.
func RenderBars(rows []metrics.Row, m metrics.Metric, width int) (string, error) {
	lines := make([]barLine, 0, len(rows))
	for _, r := range rows {
		v, err := r.Value(m)
		if err != nil {
			return "", err
		}
		lines = append(lines, barLine{label: r.Name, value: v, text: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	title := StyleTitle.Render(m.Label() + " by repository")
	return title + "\n" + renderBarLines(lines, width), nil
}

// RenderHistogram draws one bar per bin, sized by the number of repositories in it.
func RenderHistogram(bins []metrics.Bin, m metrics.Metric, width int) string {
	lines := make([]barLine, 0, len(bins))
	for _, b := range bins {
		lines = append(lines, barLine{label: b.Label(), value: float64(b.Count), text: strconv.Itoa(b.Count)})
	}
	title := StyleTitle.Render("Distribution of " + m.Label())
	return title + "\n" + renderBarLines(lines, width)
}

func renderBarLines(lines []barLine, width int) string {
	if len(lines) == 0 {
		return StyleDim.Render("no data")
	}

	labelWidth, peak := 0, 0.0
	for _, l := range lines {
		labelWidth = max(labelWidth, lipgloss.Width(l.label))
		peak = math.Max(peak, l.value)
	}

	var b strings.Builder
	for _, l := range lines {
		n := 0
		if peak > 0 {
			n = int(math.Round(l.value / peak * float64(width)))
		}
		if n == 0 && l.value > 0 {
			n = 1
		}
		label := l.label + strings.Repeat(" ", labelWidth-lipgloss.Width(l.label))
		fmt.Fprintf(&b, "%s │%s %s\n", label, styleBar.Render(strings.Repeat(barChar, n)), l.text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// WriteBars writes a per-repository bar chart of metric m.
func WriteBars(w io.Writer, rows []metrics.Row, m metrics.Metric, opts ChartOptions) error {
	out, err := RenderBars(rows, m, opts.width())
	if err != nil {
		return err
	}
	fenced(w, opts.SlackMode, func() {
		fmt.Fprintln(w, out)
	})
	return nil
}

// WriteHistogram writes the distribution of metric m as bars per bin.
func WriteHistogram(w io.Writer, bins []metrics.Bin, m metrics.Metric, opts ChartOptions) error {
	fenced(w, opts.SlackMode, func() {
		fmt.Fprintln(w, RenderHistogram(bins, m, opts.width()))
	})
	return nil
}
