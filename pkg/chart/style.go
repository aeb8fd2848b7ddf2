package chart

import "github.com/BTBurke/westgard/pkg/rules"

// Style is the marker used to highlight the points flagged by one rule
type Style struct {
	Color  string `json:"color"`
	Symbol string `json:"symbol"`
}

var styles = map[rules.RuleID]Style{
	rules.Rule13s: {Color: "red", Symbol: "x"},
	rules.Rule22s: {Color: "orange", Symbol: "diamond"},
	rules.RuleR4s: {Color: "purple", Symbol: "star"},
	rules.Rule41s: {Color: "brown", Symbol: "square"},
	rules.Rule10x: {Color: "pink", Symbol: "triangle-up"},
	rules.Rule7T:  {Color: "cyan", Symbol: "hourglass"},
}

// StyleFor returns the marker style of a rule
func StyleFor(id rules.RuleID) Style {
	if s, ok := styles[id]; ok {
		return s
	}
	return Style{Color: "black", Symbol: "circle"}
}

const (
	dataColor    = "#1f77b4"
	markerSize   = 12
	markerBorder = "DarkSlateGrey"
)
