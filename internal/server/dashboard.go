package server

import (
	"html/template"
	"net/http"

	"github.com/stahnma/gh-repostats/internal/format"
	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"pct": func(v, peak int) int {
		if peak == 0 {
			return 0
		}
		return v * 100 / peak
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Owner}} repositories</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; }
th, td { padding: .25rem .75rem; border-bottom: 1px solid #ddd; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.bar { background: #2da44e; height: .9rem; display: inline-block; }
.muted { color: #777; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>{{.Owner}} <span class="muted">({{.Kind}})</span></h1>
<form method="get">
  <input name="owner" value="{{.Owner}}" placeholder="owner">
  <select name="kind">
    <option value="org"{{if eq .Kind "org"}} selected{{end}}>org</option>
    <option value="user"{{if eq .Kind "user"}} selected{{end}}>user</option>
  </select>
  <select name="metric">
  {{- range .Metrics}}
    <option value="{{.}}"{{if eq . $.Metric}} selected{{end}}>{{.Label}}</option>
  {{- end}}
  </select>
  <input name="filter" value="{{.Filter}}" placeholder="stars>10">
  <button type="submit">Show</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}
{{if not .Authenticated}}<p class="muted">No token configured: traffic columns are empty.</p>{{end}}
<h2>Distribution of {{.Metric.Label}}</h2>
<table>
{{- range .Bins}}
<tr><td>{{.Label}}</td><td><span class="bar" style="width: {{pct .Count $.PeakBin}}px"></span> {{.Count}}</td></tr>
{{- end}}
</table>
<h2>{{len .Rows}} repositories</h2>
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Cells}}
<tr>{{range $i, $c := .}}<td{{if $i}} class="num"{{end}}>{{$c}}</td>{{end}}</tr>
{{- end}}
</table>
{{end}}
</body>
</html>
`))

type dashboardData struct {
	Owner         string
	Kind          github.Kind
	Metric        metrics.Metric
	Metrics       []metrics.Metric
	Filter        string
	Authenticated bool
	Error         string
	Rows          []metrics.Row
	Headers       []string
	Cells         [][]string
	Bins          []metrics.Bin
	PeakBin       int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Owner:         s.opts.Owner,
		Kind:          s.opts.Kind,
		Metric:        metrics.Stars,
		Metrics:       metrics.All,
		Filter:        r.URL.Query().Get("filter"),
		Authenticated: s.analyzer.Authenticated(),
		Headers:       format.TableHeaders(false),
	}

	status := http.StatusOK
	p, rows, err := s.rows(r)
	if err == nil {
		data.Owner, data.Kind, data.Metric = p.owner, p.kind, p.metric
		data.Bins, err = metrics.Histogram(rows, p.metric, p.bins)
	}
	if err != nil {
		status = statusFor(err)
		data.Error = err.Error()
	} else {
		data.Rows = rows
		data.Cells = format.TableRows(rows, false)
		for _, b := range data.Bins {
			data.PeakBin = max(data.PeakBin, b.Count)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.Error("rendering dashboard", "err", err)
	}
}
