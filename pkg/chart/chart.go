// Package chart turns a QC series, its control limits and the rule violations into an individual control
// chart description that a plotting front end can render directly
package chart

import (
	"fmt"

	"github.com/BTBurke/westgard/pkg/metric"
	"github.com/BTBurke/westgard/pkg/rules"
	"github.com/BTBurke/westgard/pkg/stat"
)

// Line is a horizontal reference line
type Line struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Color      string  `json:"color"`
	Dash       string  `json:"dash"`
	Opacity    float64 `json:"opacity"`
	Annotation string  `json:"annotation"`
}

// Trace is a set of plotted points.  Index holds the source row of each point.
type Trace struct {
	Name   string    `json:"name"`
	Mode   string    `json:"mode"`
	Rule   string    `json:"rule,omitempty"`
	X      []string  `json:"x"`
	Y      []float64 `json:"y"`
	Index  []int     `json:"index"`
	Color  string    `json:"color"`
	Symbol string    `json:"symbol,omitempty"`
	Size   int       `json:"size,omitempty"`
	Border string    `json:"border,omitempty"`
}

// Chart is a renderable individual control chart (I-Chart)
type Chart struct {
	Title      string  `json:"title"`
	XAxisTitle string  `json:"x_axis_title"`
	YAxisTitle string  `json:"y_axis_title"`
	Lines      []Line  `json:"lines"`
	Traces     []Trace `json:"traces"`
}

// Input is everything needed to assemble one chart
type Input struct {
	Parameter  string
	Series     *metric.Series
	Limits     stat.Limits
	Violations rules.ViolationSet
	// Applied restricts the highlighted rules.  When empty every rule in Violations is shown.
	Applied []rules.RuleID
	// Label returns the x axis label of a source row; the row number is used when nil
	Label func(idx int) string
}

// Assemble builds the chart: ±2s dashed zone lines, center and ±3s control lines, the data trace, then one
// marker trace per applied rule that flagged at least one point
func Assemble(in Input) Chart {
	label := in.Label
	if label == nil {
		label = func(idx int) string { return fmt.Sprintf("%d", idx) }
	}
	l := in.Limits

	c := Chart{
		Title:      fmt.Sprintf("Individual Control Chart (I-Chart) for %s", in.Parameter),
		XAxisTitle: "Date",
		YAxisTitle: "Measurement Value",
		Lines: []Line{
			{Name: "+2s", Value: l.Line(2), Color: "orange", Dash: "dash", Opacity: 0.7, Annotation: "+2s"},
			{Name: "-2s", Value: l.Line(-2), Color: "orange", Dash: "dash", Opacity: 0.7, Annotation: "-2s"},
			{Name: "UCL", Value: l.UCL(), Color: "red", Dash: "solid", Opacity: 1, Annotation: fmt.Sprintf("UCL (+3s): %.2f", l.UCL())},
			{Name: "Center", Value: l.Center, Color: "green", Dash: "solid", Opacity: 1, Annotation: fmt.Sprintf("Center: %.2f", l.Center)},
			{Name: "LCL", Value: l.LCL(), Color: "red", Dash: "solid", Opacity: 1, Annotation: fmt.Sprintf("LCL (-3s): %.2f", l.LCL())},
		},
	}

	data := Trace{
		Name:  in.Parameter,
		Mode:  "lines+markers",
		X:     []string{},
		Y:     []float64{},
		Index: []int{},
		Color: dataColor,
	}
	for _, p := range in.Series.Points() {
		data.X = append(data.X, label(p.Index))
		data.Y = append(data.Y, p.Value)
		data.Index = append(data.Index, p.Index)
	}
	c.Traces = append(c.Traces, data)

	applied := in.Applied
	if len(applied) == 0 {
		applied = in.Violations.Rules()
	}
	drawn := make(map[rules.RuleID]bool)
	for _, id := range applied {
		flagged := in.Violations.Indices(id)
		if len(flagged) == 0 || drawn[id] {
			continue
		}
		drawn[id] = true
		style := StyleFor(id)
		t := Trace{
			Name:   fmt.Sprintf("Violation: %s", id),
			Mode:   "markers",
			Rule:   string(id),
			Color:  style.Color,
			Symbol: style.Symbol,
			Size:   markerSize,
			Border: markerBorder,
		}
		for _, idx := range flagged {
			v, ok := in.Series.Lookup(idx)
			if !ok {
				continue
			}
			t.X = append(t.X, label(idx))
			t.Y = append(t.Y, v)
			t.Index = append(t.Index, idx)
		}
		c.Traces = append(c.Traces, t)
	}
	return c
}
