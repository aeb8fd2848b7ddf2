// Package ingest loads QC data and control limits from a workbook or a public Google Sheet into a validated,
// typed dataset.  Nothing in this package evaluates rules.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BTBurke/westgard/pkg/metric"
	"github.com/BTBurke/westgard/pkg/stat"
)

// Names of the sheets a QC source must provide
const (
	SheetData          = "QC data"
	SheetHistorical    = "Historical limits"
	SheetSpecification = "Specification limits"
)

// RequiredSheets lists every sheet a QC source must provide
var RequiredSheets = []string{SheetData, SheetHistorical, SheetSpecification}

// Dataset is the typed contents of a QC source.  It is not modified after it is built and is safe to share
// between goroutines.
type Dataset struct {
	// DateColumn is the header of the first QC data column
	DateColumn string
	// Parameters are the remaining QC data headers in column order
	Parameters    []string
	Historical    stat.LimitsTable
	Specification stat.LimitsTable

	labels []string
	series map[string]*metric.Series
}

// Series returns the numeric observations of a parameter.  Blank and non-numeric cells are left out, so the
// indices of the returned series are the data row positions that held a number.
func (d *Dataset) Series(parameter string) (*metric.Series, error) {
	s, ok := d.series[parameter]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, parameter)
	}
	return s, nil
}

// Label returns the date column value of data row idx
func (d *Dataset) Label(idx int) string {
	if idx < 0 || idx >= len(d.labels) {
		return ""
	}
	return d.labels[idx]
}

// Rows is the number of data rows below the header
func (d *Dataset) Rows() int {
	return len(d.labels)
}

// Resolver returns a limits resolver backed by the dataset's limits tables
func (d *Dataset) Resolver() *stat.Resolver {
	return &stat.Resolver{
		Historical:    d.Historical,
		Specification: d.Specification,
	}
}

// NewDataset builds a dataset from the raw cell rows of the three sheets.  Each table starts with its header row.
func NewDataset(data, historical, specification [][]string) (*Dataset, error) {
	d := &Dataset{series: make(map[string]*metric.Series)}
	if err := d.parseData(data); err != nil {
		return nil, err
	}

	var err error
	if d.Historical, err = parseLimits(historical); err != nil {
		return nil, fmt.Errorf("%s: %w", SheetHistorical, err)
	}
	if d.Specification, err = parseLimits(specification); err != nil {
		return nil, fmt.Errorf("%s: %w", SheetSpecification, err)
	}
	return d, nil
}

func (d *Dataset) parseData(rows [][]string) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: the sheet is empty", ErrMalformedData)
	}
	header := rows[0]
	if len(header) < 2 {
		return fmt.Errorf("%w: expected a date column followed by at least one parameter column", ErrMalformedData)
	}
	d.DateColumn = strings.TrimSpace(header[0])

	columns := map[int]string{}
	for col := 1; col < len(header); col++ {
		name := strings.TrimSpace(header[col])
		if name == "" {
			continue
		}
		if _, dup := d.series[name]; dup {
			return fmt.Errorf("%w: duplicate parameter column %q", ErrMalformedData, name)
		}
		s, err := metric.NewSeries(metric.WithName(name, nil))
		if err != nil {
			return err
		}
		d.series[name] = s
		d.Parameters = append(d.Parameters, name)
		columns[col] = name
	}
	if len(d.Parameters) == 0 {
		return fmt.Errorf("%w: no parameter columns", ErrMalformedData)
	}

	body := trimEmpty(rows[1:])
	d.labels = make([]string, len(body))
	for idx, row := range body {
		if len(row) > 0 {
			d.labels[idx] = strings.TrimSpace(row[0])
		}
		for col, name := range columns {
			if col >= len(row) {
				continue
			}
			v, ok := number(row[col])
			if !ok {
				continue
			}
			if err := d.series[name].Record(idx, v); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedData, err)
			}
		}
	}
	return nil
}

// parseLimits reads a limits table laid out with parameters across the header and the mean and standard
// deviation in the first two rows below it.  A leading label column (blank header or text cells such as
// "mean" and "std") is skipped.
func parseLimits(rows [][]string) (stat.LimitsTable, error) {
	table := stat.LimitsTable{}
	if len(rows) == 0 {
		return table, nil
	}
	header := rows[0]
	body := trimEmpty(rows[1:])
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: expected a mean row and a standard deviation row", ErrMalformedLimits)
	}

	for col, h := range header {
		name := strings.TrimSpace(h)
		if col == 0 && isLabelColumn(name, body) {
			continue
		}
		if name == "" {
			continue
		}
		m, err := limitCell(body, 0, col)
		if err != nil {
			return nil, fmt.Errorf("%w: mean of %q: %v", ErrMalformedLimits, name, err)
		}
		sd, err := limitCell(body, 1, col)
		if err != nil {
			return nil, fmt.Errorf("%w: standard deviation of %q: %v", ErrMalformedLimits, name, err)
		}
		table[name] = stat.Limits{Center: m, Dispersion: sd}
	}
	return table, nil
}

var (
	labelHeaders = map[string]bool{"statistic": true, "stat": true, "parameter": true, "label": true, "limit": true}
	labelCells   = map[string]bool{
		"mean": true, "average": true, "avg": true, "center": true, "target": true,
		"std": true, "sd": true, "stdev": true, "std dev": true, "standard deviation": true,
	}
)

// isLabelColumn reports whether the first column names the rows instead of holding a parameter.  Only a blank
// or known label header, or mean and std style cells, mark a label column; anything else is parsed as limits.
func isLabelColumn(header string, body [][]string) bool {
	h := strings.ToLower(header)
	if h == "" || labelHeaders[h] {
		return true
	}
	labels := 0
	for _, row := range body[:min(2, len(body))] {
		if len(row) == 0 {
			return false
		}
		if !labelCells[strings.ToLower(strings.TrimSpace(row[0]))] {
			return false
		}
		labels++
	}
	return labels > 0
}

// limitCell parses a limits value; a missing or blank cell is NaN
func limitCell(body [][]string, row, col int) (float64, error) {
	if row >= len(body) || col >= len(body[row]) || strings.TrimSpace(body[row][col]) == "" {
		return math.NaN(), nil
	}
	v, ok := number(body[row][col])
	if !ok {
		return 0, fmt.Errorf("%q is not a number", body[row][col])
	}
	return v, nil
}

// number parses a finite float from a cell
func number(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// trimEmpty drops trailing rows without any content
func trimEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && blank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
