// Package rules evaluates a QC series against Westgard control rules
package rules

import (
	"fmt"
	"sort"
	"strings"
)

// RuleID names a Westgard rule
type RuleID string

const (
	// One point beyond ±3s
	Rule13s = RuleID("1-3s")
	// Two consecutive points beyond the same ±2s limit
	Rule22s = RuleID("2-2s")
	// Range of two consecutive points greater than 4s
	RuleR4s = RuleID("R-4s")
	// Four consecutive points beyond the same ±1s limit
	Rule41s = RuleID("4-1s")
	// Ten consecutive points on the same side of the center
	Rule10x = RuleID("10-x")
	// Seven consecutive points trending in one direction
	Rule7T = RuleID("7-T")
)

var all = []RuleID{Rule13s, Rule22s, RuleR4s, Rule41s, Rule10x, Rule7T}

// All returns every rule in canonical order
func All() []RuleID {
	return append([]RuleID{}, all...)
}

// ParseRule matches a rule identifier case-insensitively
func ParseRule(s string) (RuleID, error) {
	s = strings.TrimSpace(s)
	for _, id := range all {
		if strings.EqualFold(s, string(id)) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRule, s)
}

func (id RuleID) String() string {
	return string(id)
}

func (id RuleID) order() int {
	for i, r := range all {
		if r == id {
			return i
		}
	}
	return len(all)
}

// ViolationSet maps each evaluated rule to the ascending, unique series indices implicated by it.  Rules that
// were evaluated without any violation map to an empty slice.
type ViolationSet map[RuleID][]int

// Rules returns the evaluated rules in canonical order
func (v ViolationSet) Rules() []RuleID {
	out := make([]RuleID, 0, len(v))
	for id := range v {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order() < out[j].order() })
	return out
}

// Indices returns the indices flagged by a rule, or nil if the rule was not evaluated
func (v ViolationSet) Indices(id RuleID) []int {
	return v[id]
}

// Total counts the flagged indices summed over every rule
func (v ViolationSet) Total() int {
	n := 0
	for _, idx := range v {
		n += len(idx)
	}
	return n
}

// Flagged returns the ascending union of indices flagged by any rule
func (v ViolationSet) Flagged() []int {
	seen := make(map[int]struct{})
	for _, idx := range v {
		for _, i := range idx {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
