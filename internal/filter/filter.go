// Package filter narrows and orders derived repository rows.
//
// Predicates are written as "<metric><op><number>", with op one of
// >, >=, <, <=, =, ==, !=, or as an inclusive range "<metric>=<lo>..<hi>".
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stahnma/gh-repostats/internal/metrics"
)

// ErrInvalidPredicate is returned for predicates that cannot be parsed.
var ErrInvalidPredicate = errors.New("invalid filter predicate")

// Op is a comparison operator.
type Op string

const (
	OpGT    Op = ">"
	OpGTE   Op = ">="
	OpLT    Op = "<"
	OpLTE   Op = "<="
	OpEQ    Op = "="
	OpNE    Op = "!="
	OpRange Op = ".."
)

// Predicate tests one metric of a row against a threshold or range.
type Predicate struct {
	Metric metrics.Metric `json:"metric"`
	Op     Op             `json:"op"`
	Value  float64        `json:"value"`
	// Hi is the inclusive upper bound when Op is OpRange; Value is the lower.
	Hi float64 `json:"hi,omitempty"`
}

func (p Predicate) String() string {
	if p.Op == OpRange {
		return fmt.Sprintf("%s=%s..%s", p.Metric, fmtNum(p.Value), fmtNum(p.Hi))
	}
	return fmt.Sprintf("%s%s%s", p.Metric, p.Op, fmtNum(p.Value))
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Parse reads a single predicate such as "stars>100" or "inactivity_days=30..365".
func Parse(s string) (Predicate, error) {
	i := strings.IndexAny(s, "<>=!")
	if i <= 0 {
		return Predicate{}, fmt.Errorf("%w: %q", ErrInvalidPredicate, s)
	}

	m, err := metrics.ParseMetric(s[:i])
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: %w", ErrInvalidPredicate, err)
	}

	rest := s[i:]
	var op Op
	for _, candidate := range []Op{OpGTE, OpLTE, OpNE, "==", OpGT, OpLT, OpEQ} {
		if strings.HasPrefix(rest, string(candidate)) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Predicate{}, fmt.Errorf("%w: %q", ErrInvalidPredicate, s)
	}
	operand := strings.TrimSpace(rest[len(op):])
	if op == "==" {
		op = OpEQ
	}

	if op == OpEQ && strings.Contains(operand, "..") {
		loStr, hiStr, _ := strings.Cut(operand, "..")
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(loStr), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(hiStr), 64)
		if err1 != nil || err2 != nil || lo > hi {
			return Predicate{}, fmt.Errorf("%w: bad range in %q", ErrInvalidPredicate, s)
		}
		return Predicate{Metric: m, Op: OpRange, Value: lo, Hi: hi}, nil
	}

	v, err := strconv.ParseFloat(operand, 64)
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: bad number in %q", ErrInvalidPredicate, s)
	}
	return Predicate{Metric: m, Op: op, Value: v}, nil
}

// ParseAll parses every predicate, stopping at the first error.
func ParseAll(exprs []string) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(exprs))
	for _, e := range exprs {
		if strings.TrimSpace(e) == "" {
			continue
		}
		p, err := Parse(e)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// Match reports whether row satisfies p.
func (p Predicate) Match(row metrics.Row) bool {
	v, err := row.Value(p.Metric)
	if err != nil {
		return false
	}
	switch p.Op {
	case OpGT:
		return v > p.Value
	case OpGTE:
		return v >= p.Value
	case OpLT:
		return v < p.Value
	case OpLTE:
		return v <= p.Value
	case OpEQ:
		return v == p.Value
	case OpNE:
		return v != p.Value
	case OpRange:
		return v >= p.Value && v <= p.Hi
	}
	return false
}

// Apply returns the rows that satisfy every predicate, in input order.
// The input slice is not modified.
func Apply(rows []metrics.Row, preds []Predicate) []metrics.Row {
	out := make([]metrics.Row, 0, len(rows))
	for _, r := range rows {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r metrics.Row, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(r) {
			return false
		}
	}
	return true
}
