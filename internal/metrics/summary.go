package metrics

import (
	"github.com/montanaflynn/stats"
)

// Summary describes the distribution of one metric over a set of rows.
type Summary struct {
	Metric Metric  `json:"metric"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
	Sum    float64 `json:"sum"`
}

// Summarize computes summary statistics of m. An empty row set gives a
// zero Summary.
func Summarize(rows []Row, m Metric) (Summary, error) {
	s := Summary{Metric: m, Count: len(rows)}
	if len(rows) == 0 {
		if _, err := (Row{}).Value(m); err != nil {
			return Summary{}, err
		}
		return s, nil
	}

	data := make(stats.Float64Data, 0, len(rows))
	for _, r := range rows {
		v, err := r.Value(m)
		if err != nil {
			return Summary{}, err
		}
		data = append(data, v)
	}

	// The stats functions only fail on empty input, which is handled above.
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.StdDev, _ = stats.StandardDeviation(data)
	s.Sum, _ = stats.Sum(data)
	return s, nil
}

// SummarizeAll summarizes every metric in display order.
func SummarizeAll(rows []Row) []Summary {
	out := make([]Summary, 0, len(All))
	for _, m := range All {
		s, _ := Summarize(rows, m)
		out = append(out, s)
	}
	return out
}
