// Package westgard evaluates laboratory quality control series against the Westgard multi-rules and assembles
// an individual control chart for every parameter.
package westgard

import (
	"context"
	"errors"

	"github.com/BTBurke/westgard/pkg/chart"
	"github.com/BTBurke/westgard/pkg/ingest"
	"github.com/BTBurke/westgard/pkg/rules"
	"github.com/BTBurke/westgard/pkg/stat"
	"golang.org/x/sync/errgroup"
)

// Request selects the parameters, limits source and rules of an analysis.  Zero values select every parameter,
// limits calculated from the data and all six rules.
type Request struct {
	Parameters []string       `json:"parameters"`
	Limits     stat.Source    `json:"limits"`
	Rules      []rules.RuleID `json:"rules"`
}

// Result is the outcome for one parameter.  When no usable limits exist Warning is set and Limits, Violations
// and Chart are empty.
type Result struct {
	Parameter  string             `json:"parameter"`
	Series     string             `json:"series"`
	Source     stat.Source        `json:"limits_source"`
	Points     int                `json:"points"`
	Limits     *stat.Limits       `json:"limits,omitempty"`
	Violations rules.ViolationSet `json:"violations,omitempty"`
	Chart      *chart.Chart       `json:"chart,omitempty"`
	Warning    string             `json:"warning,omitempty"`
}

// Analyze evaluates each requested parameter of the dataset.  Parameters are evaluated concurrently and the
// results keep the order of the request.  A parameter that is not in the dataset fails the whole request.
func Analyze(ctx context.Context, ds *ingest.Dataset, req Request) ([]Result, error) {
	params := req.Parameters
	if len(params) == 0 {
		params = ds.Parameters
	}
	source := req.Limits
	if source == "" {
		source = stat.FromData
	}
	ids := req.Rules
	if len(ids) == 0 {
		ids = rules.All()
	}
	for _, p := range params {
		if _, err := ds.Series(p); err != nil {
			return nil, err
		}
	}

	resolver := ds.Resolver()
	results := make([]Result, len(params))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range params {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := analyzeParameter(ds, resolver, p, source, ids)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func analyzeParameter(ds *ingest.Dataset, resolver *stat.Resolver, parameter string, source stat.Source, ids []rules.RuleID) (Result, error) {
	series, err := ds.Series(parameter)
	if err != nil {
		return Result{}, err
	}
	r := Result{
		Parameter: series.Parameter(),
		Series:    series.NameWith(map[string]string{"limits": string(source)}),
		Source:    source,
		Points:    series.Len(),
	}

	limits, err := resolver.Resolve(parameter, source, series.Values())
	switch {
	case errors.Is(err, stat.ErrNoLimits):
		r.Warning = err.Error()
		return r, nil
	case err != nil:
		return Result{}, err
	}

	violations, err := rules.EvaluateRules(series, limits.Center, limits.Dispersion, ids...)
	switch {
	case errors.Is(err, rules.ErrLimitsUndefined):
		r.Warning = err.Error()
		return r, nil
	case err != nil:
		return Result{}, err
	}

	c := chart.Assemble(chart.Input{
		Parameter:  parameter,
		Series:     series,
		Limits:     limits,
		Violations: violations,
		Applied:    ids,
		Label:      ds.Label,
	})
	r.Limits = &limits
	r.Violations = violations
	r.Chart = &c
	return r, nil
}

// Flagged counts the results with at least one rule violation
func Flagged(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Violations.Total() > 0 {
			n++
		}
	}
	return n
}
