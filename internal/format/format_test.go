package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

func TestWriteJSON_Normal(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]int{"stars": 42}

	if err := WriteJSON(&buf, data, false); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `"stars": 42`) {
		t.Errorf("expected JSON with stars, got:\n%s", out)
	}
	if strings.Contains(out, "```") {
		t.Error("normal mode should not have backticks")
	}
}

func TestWriteJSON_SlackMode(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]int{"stars": 42}

	if err := WriteJSON(&buf, data, true); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "```\n") {
		t.Errorf("slack mode should start with ```, got:\n%s", out)
	}
	if !strings.HasSuffix(out, "```\n") {
		t.Errorf("slack mode should end with ```, got:\n%s", out)
	}
	if !strings.Contains(out, `"stars": 42`) {
		t.Errorf("expected JSON content, got:\n%s", out)
	}
}

func TestWriteJSON_Struct(t *testing.T) {
	var buf bytes.Buffer
	type item struct {
		Name string `json:"name"`
	}
	data := []item{{Name: "test"}}

	if err := WriteJSON(&buf, data, false); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `"name": "test"`) {
		t.Errorf("expected struct JSON, got:\n%s", out)
	}
}

func testRows() []metrics.Row {
	return []metrics.Row{
		{Repository: github.Repository{Owner: "octo-org", Name: "alpha", Stars: 10, URL: "https://github.com/octo-org/alpha"}, Views: 7, UniqueViews: 3, TrafficKnown: true},
		{Repository: github.Repository{Owner: "octo-org", Name: "beta", Stars: 50, Archived: true}, InactivityDays: 400},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, testRows(), TableOptions{}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Name", "Inactivity Days", "Unique Views", "Unique Clones", "alpha", "beta", "400", "2 repositories"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "URL") {
		t.Error("narrow table should not have a URL column")
	}
	if got := TableHeaders(false)[5:]; got[0] != "Unique Views" || got[1] != "Unique Clones" {
		t.Errorf("traffic headers = %v, want unique views and clones", got)
	}
}

func TestWriteTable_Wide(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, testRows(), TableOptions{Wide: true, SlackMode: true}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "```\n") {
		t.Errorf("slack mode should start with ```, got:\n%s", out)
	}
	for _, want := range []string{"Unique Clones", "Views", "Clones", "Archived", "https://github.com/octo-org/alpha", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in wide table, got:\n%s", want, out)
		}
	}
}

func TestTableRows_Traffic(t *testing.T) {
	cells := TableRows(testRows(), false)
	if len(cells) != 2 {
		t.Fatalf("got %d rows, want 2", len(cells))
	}
	if cells[0][5] != "3" {
		t.Errorf("alpha unique views = %q, want 3", cells[0][5])
	}
	if cells[1][5] != "0" || cells[1][6] != "0" {
		t.Errorf("beta traffic = %q/%q, want 0 for unknown traffic", cells[1][5], cells[1][6])
	}

	wide := TableRows(testRows(), true)
	if wide[0][7] != "7" {
		t.Errorf("alpha views = %q, want 7 in the wide set", wide[0][7])
	}
}

func TestRenderBars_ScalesToPeak(t *testing.T) {
	out, err := RenderBars(testRows(), metrics.Stars, 10)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected title and 2 bars, got:\n%s", out)
	}
	if n := strings.Count(lines[1], barChar); n != 2 {
		t.Errorf("alpha bar = %d chars, want 2", n)
	}
	if n := strings.Count(lines[2], barChar); n != 10 {
		t.Errorf("beta bar = %d chars, want 10", n)
	}
}

func TestRenderBars_UnknownMetric(t *testing.T) {
	if _, err := RenderBars(testRows(), metrics.Metric("watchers"), 10); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestWriteHistogram(t *testing.T) {
	bins := []metrics.Bin{
		{Lo: 0, Hi: 5, Count: 3, Repos: []string{"a", "b", "c"}},
		{Lo: 5, Hi: 10, Count: 0, Repos: []string{}},
	}
	var buf bytes.Buffer
	if err := WriteHistogram(&buf, bins, metrics.Stars, ChartOptions{Width: 6}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Distribution of Stars") {
		t.Errorf("missing title, got:\n%s", out)
	}
	if !strings.Contains(out, "0 - 5") || !strings.Contains(out, "5 - 10") {
		t.Errorf("missing bin labels, got:\n%s", out)
	}
	if n := strings.Count(out, barChar); n != 6 {
		t.Errorf("got %d bar chars, want 6", n)
	}
}

func TestWriteHistogram_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistogram(&buf, nil, metrics.Views, ChartOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no data") {
		t.Errorf("expected no data, got:\n%s", buf.String())
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	summaries := metrics.SummarizeAll(testRows())
	if err := WriteSummary(&buf, summaries, false); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Metric", "Median", "Stars", "Unique Clones", "30.00", "60.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary, got:\n%s", want, out)
		}
	}
}
