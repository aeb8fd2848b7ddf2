package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/BTBurke/westgard/pkg/rules"
	"github.com/BTBurke/westgard/pkg/stat"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary is one parameter row group of the text report
type Summary struct {
	Parameter  string
	Source     stat.Source
	Limits     stat.Limits
	Violations rules.ViolationSet
	// Warning replaces the rule rows when no limits could be derived
	Warning string
	Label   func(idx int) string
}

// WriteTable renders the limits and flagged points of each parameter as a table
func WriteTable(w io.Writer, summaries ...Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Parameter", "Limits", "Mean", "SD", "LCL", "UCL", "Rule", "Flagged"})

	for i, s := range summaries {
		if i > 0 {
			t.AppendSeparator()
		}
		if s.Warning != "" {
			t.AppendRow(table.Row{s.Parameter, s.Source, "-", "-", "-", "-", "-", s.Warning})
			continue
		}
		head := table.Row{
			s.Parameter,
			s.Source,
			fmt.Sprintf("%.3f", s.Limits.Center),
			fmt.Sprintf("%.3f", s.Limits.Dispersion),
			fmt.Sprintf("%.2f", s.Limits.LCL()),
			fmt.Sprintf("%.2f", s.Limits.UCL()),
		}
		flagged := 0
		for _, id := range s.Violations.Rules() {
			idx := s.Violations.Indices(id)
			if len(idx) == 0 {
				continue
			}
			row := table.Row{"", "", "", "", "", ""}
			if flagged == 0 {
				row = head
			}
			t.AppendRow(append(row, string(id), points(idx, s.Label)))
			flagged++
		}
		if flagged == 0 {
			t.AppendRow(append(head, "-", "in control"))
		}
	}
	t.Render()
}

func points(idx []int, label func(int) string) string {
	parts := make([]string, len(idx))
	for i, x := range idx {
		if label != nil && label(x) != "" {
			parts[i] = label(x)
			continue
		}
		parts[i] = fmt.Sprintf("#%d", x)
	}
	return strings.Join(parts, ", ")
}
