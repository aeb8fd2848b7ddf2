package rules

import (
	"fmt"
	"math"

	"github.com/BTBurke/westgard/pkg/metric"
)

// rule is a window size and the condition that flags every point in a window
type rule struct {
	window int
	check  func(w []float64, t thresholds) bool
}

var definitions = map[RuleID]rule{
	Rule13s: {window: 1, check: func(w []float64, t thresholds) bool {
		return w[0] > t.plus3 || w[0] < t.minus3
	}},
	Rule22s: {window: 2, check: func(w []float64, t thresholds) bool {
		return allAbove(w, t.plus2) || allBelow(w, t.minus2)
	}},
	RuleR4s: {window: 2, check: func(w []float64, t thresholds) bool {
		return math.Abs(w[1]-w[0]) > 4*t.dispersion
	}},
	Rule41s: {window: 4, check: func(w []float64, t thresholds) bool {
		return allAbove(w, t.plus1) || allBelow(w, t.minus1)
	}},
	Rule10x: {window: 10, check: func(w []float64, t thresholds) bool {
		return allAbove(w, t.center) || allBelow(w, t.center)
	}},
	Rule7T: {window: 7, check: func(w []float64, _ thresholds) bool {
		return increasing(w) || decreasing(w)
	}},
}

// Evaluate applies all six rules to the series.  The dispersion must be a positive finite number, otherwise
// ErrLimitsUndefined is returned and nothing is evaluated.
func Evaluate(series *metric.Series, center, dispersion float64) (ViolationSet, error) {
	return EvaluateRules(series, center, dispersion, all...)
}

// EvaluateRules applies only the requested rules.  The returned set has exactly one key per distinct requested
// rule.  With no rules requested the set is empty.
func EvaluateRules(series *metric.Series, center, dispersion float64, ids ...RuleID) (ViolationSet, error) {
	for _, id := range ids {
		if _, ok := definitions[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, string(id))
		}
	}
	t, err := newThresholds(center, dispersion)
	if err != nil {
		return nil, err
	}

	var values []float64
	var indices []int
	if series != nil {
		values = series.Values()
		indices = series.Indices()
	}

	out := make(ViolationSet, len(ids))
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		out[id] = slide(values, indices, definitions[id], t)
	}
	return out, nil
}

// slide moves the rule window across every position and collects the indices of each window that meets the
// condition.  Overlapping windows all contribute, and the hit mask keeps each position once in series order.
func slide(values []float64, indices []int, r rule, t thresholds) []int {
	hit := make([]bool, len(values))
	for end := r.window; end <= len(values); end++ {
		start := end - r.window
		if r.check(values[start:end], t) {
			for i := start; i < end; i++ {
				hit[i] = true
			}
		}
	}

	out := []int{}
	for i, h := range hit {
		if h {
			out = append(out, indices[i])
		}
	}
	return out
}
