package westgard

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BTBurke/westgard/pkg/chart"
	"github.com/BTBurke/westgard/pkg/ingest"
)

// Report is the JSON document written for an analysis
type Report struct {
	DateColumn string   `json:"date_column"`
	Rows       int      `json:"rows"`
	Results    []Result `json:"results"`
}

// WriteReport writes the results as a text table or as JSON including the charts
func WriteReport(w io.Writer, format string, ds *ingest.Dataset, results []Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Report{DateColumn: ds.DateColumn, Rows: ds.Rows(), Results: results})
	case FormatTable, "":
		summaries := make([]chart.Summary, 0, len(results))
		for _, r := range results {
			s := chart.Summary{
				Parameter:  r.Parameter,
				Source:     r.Source,
				Violations: r.Violations,
				Warning:    r.Warning,
				Label:      ds.Label,
			}
			if r.Limits != nil {
				s.Limits = *r.Limits
			}
			summaries = append(summaries, s)
		}
		chart.WriteTable(w, summaries...)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
