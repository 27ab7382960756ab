// Package metrics derives per-repository figures from raw GitHub records.
// Every function here is pure: given the same input and clock it returns
// the same result and never fails for well-formed input.
package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stahnma/gh-repostats/internal/github"
)

// ErrUnknownMetric is returned for a metric name that has no accessor.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric names a numeric column of a Row.
type Metric string

const (
	Stars          Metric = "stars"
	Forks          Metric = "forks"
	OpenIssues     Metric = "open_issues"
	InactivityDays Metric = "inactivity_days"
	Views          Metric = "views"
	UniqueViews    Metric = "unique_views"
	Clones         Metric = "clones"
	UniqueClones   Metric = "unique_clones"
)

// All lists the metrics in display order.
var All = []Metric{Stars, Forks, OpenIssues, InactivityDays, Views, UniqueViews, Clones, UniqueClones}

// ParseMetric accepts metric names as well as their display labels, so
// "Open Issues", "open-issues" and "open_issues" are the same metric.
func ParseMetric(s string) (Metric, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, m := range All {
		if string(m) == norm {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Label returns the column heading for m, e.g. "Inactivity Days".
func (m Metric) Label() string {
	words := strings.Split(string(m), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Row is a repository with its derived figures. Rows are built once per
// fetch and not modified afterwards.
type Row struct {
	github.Repository
	InactivityDays int  `json:"inactivity_days"`
	Views          int  `json:"views"`
	UniqueViews    int  `json:"unique_views"`
	Clones         int  `json:"clones"`
	UniqueClones   int  `json:"unique_clones"`
	TrafficKnown   bool `json:"traffic_known"`
}

// Value returns the numeric value of metric m for the row.
func (r Row) Value(m Metric) (float64, error) {
	switch m {
	case Stars:
		return float64(r.Stars), nil
	case Forks:
		return float64(r.Forks), nil
	case OpenIssues:
		return float64(r.OpenIssues), nil
	case InactivityDays:
		return float64(r.InactivityDays), nil
	case Views:
		return float64(r.Views), nil
	case UniqueViews:
		return float64(r.UniqueViews), nil
	case Clones:
		return float64(r.Clones), nil
	case UniqueClones:
		return float64(r.UniqueClones), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
}

// InactivityDaysSince returns the whole days between last and now,
// never negative. A zero last yields 0.
func InactivityDaysSince(last, now time.Time) int {
	if last.IsZero() || !now.After(last) {
		return 0
	}
	return int(now.Sub(last) / (24 * time.Hour))
}

// TrafficSum is the total over a traffic window.
type TrafficSum struct {
	Count   int
	Uniques int
}

// SumTraffic adds up the daily counts and uniques.
func SumTraffic(days []github.DailyCount) TrafficSum {
	var s TrafficSum
	for _, d := range days {
		s.Count += d.Count
		s.Uniques += d.Uniques
	}
	return s
}

// Derive builds a Row from a repository and its traffic. The last push
// drives inactivity; repositories never pushed fall back to the last update.
func Derive(repo github.Repository, traffic github.Traffic, now time.Time) Row {
	last := repo.PushedAt
	if last.IsZero() {
		last = repo.UpdatedAt
	}
	views := SumTraffic(traffic.Views)
	clones := SumTraffic(traffic.Clones)
	return Row{
		Repository:     repo,
		InactivityDays: InactivityDaysSince(last, now),
		Views:          views.Count,
		UniqueViews:    views.Uniques,
		Clones:         clones.Count,
		UniqueClones:   clones.Uniques,
		TrafficKnown:   traffic.Available,
	}
}
