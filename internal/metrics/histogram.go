package metrics

import (
	"math"
	"sort"
	"strconv"
)

// DefaultMaxBins caps the number of histogram bins.
const DefaultMaxBins = 15

// Bin is one bar of a histogram. Bins are right-closed (Lo, Hi] except the
// first, which also includes Lo.
type Bin struct {
	Lo    float64  `json:"lo"`
	Hi    float64  `json:"hi"`
	Count int      `json:"count"`
	Repos []string `json:"repos"`
}

// Label renders the bin range with at most two decimals, e.g. "5 - 8.33".
func (b Bin) Label() string {
	return trimFloat(b.Lo) + " - " + trimFloat(b.Hi)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// Histogram splits the distribution of m over rows into equal-width bins.
// The bin count is min(max-min+1, maxBins), so small integer ranges get
// one bin per value. Empty input returns no bins.
func Histogram(rows []Row, m Metric, maxBins int) ([]Bin, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if maxBins <= 0 {
		maxBins = DefaultMaxBins
	}

	values := make([]float64, len(rows))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range rows {
		v, err := r.Value(m)
		if err != nil {
			return nil, err
		}
		values[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	n := int(math.Floor(hi-lo)) + 1
	if n > maxBins {
		n = maxBins
	}
	span := hi - lo

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + span*float64(i)/float64(n)
		bins[i].Hi = lo + span*float64(i+1)/float64(n)
		bins[i].Repos = []string{}
	}
	bins[n-1].Hi = hi

	for i, v := range values {
		idx := sort.Search(n, func(j int) bool { return v <= bins[j].Hi })
		if idx == n {
			idx = n - 1
		}
		bins[idx].Count++
		bins[idx].Repos = append(bins[idx].Repos, rows[i].Name)
	}
	return bins, nil
}
