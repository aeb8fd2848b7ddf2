package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/BTBurke/westgard/pkg/metric"
	"github.com/BTBurke/westgard/pkg/rng"
	"github.com/BTBurke/westgard/pkg/rules"
	"github.com/BTBurke/westgard/pkg/stat"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
)

const (
	Mean  float64 = 100
	Stdev float64 = 2
)

var wg sync.WaitGroup

type results struct {
	mu    sync.Mutex
	runs  int
	fired map[rules.RuleID]int
	any   int
}

func (r *results) record(v rules.ViolationSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	for id, idx := range v {
		if len(idx) > 0 {
			r.fired[id]++
		}
	}
	if v.Total() > 0 {
		r.any++
	}
}

func newResults() *results {
	return &results{fired: make(map[rules.RuleID]int)}
}

func main() {
	pf := pflag.NewFlagSet("calibrate", pflag.ExitOnError)
	runs := pf.Int("runs", 10000, "Number of simulated series")
	points := pf.Int("points", 20, "Observations per series")
	procs := pf.Int("procs", 4, "Concurrent workers")
	shift := pf.Float64("shift", 0, "Systematic shift added to every observation, in standard deviations")
	trend := pf.Float64("trend", 0, "Drift added per observation, in standard deviations")
	estimate := pf.Bool("estimate", false, "Calculate the limits from each simulated series instead of using the true mean and SD")
	seed := pf.Int64("seed", time.Now().UnixNano(), "Random seed")
	out := pf.StringP("output", "o", "", "Also write the rejection rates to this file")
	_ = pf.Parse(os.Args[1:])
	if err := validate(*runs, *points, *procs); err != nil {
		log.Fatalf("invalid options: %v", err)
	}

	res := newResults()
	start := time.Now()
	per := *runs / *procs
	for p := 0; p < *procs; p++ {
		n := per
		if p == *procs-1 {
			n = *runs - per*(*procs-1)
		}
		wg.Add(1)
		log.Printf("start worker=%d runs=%d\n", p, n)
		go simulate(res, n, *points, *shift, *trend, *estimate, *seed+int64(p))
	}
	wg.Wait()
	fmt.Printf("Time Elapsed: %v\n", time.Since(start))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Runs rejected", "Rate"})
	var b bytes.Buffer
	for _, id := range rules.All() {
		rate := float64(res.fired[id]) / float64(res.runs)
		t.AppendRow(table.Row{id, res.fired[id], fmt.Sprintf("%1.5f", rate)})
		b.WriteString(fmt.Sprintf("%s %f\n", id, rate))
	}
	anyRate := float64(res.any) / float64(res.runs)
	t.AppendFooter(table.Row{"any", res.any, fmt.Sprintf("%1.5f", anyRate)})
	b.WriteString(fmt.Sprintf("any %f\n", anyRate))
	t.Render()

	if *out != "" {
		if err := os.WriteFile(*out, b.Bytes(), 0644); err != nil {
			log.Fatalf("could not write results: %v", err)
		}
	}
}

func validate(runs int, points int, procs int) error {
	switch {
	case runs < 1:
		return fmt.Errorf("--runs must be at least 1, got %d", runs)
	case points < 1:
		return fmt.Errorf("--points must be at least 1, got %d", points)
	case procs < 1:
		return fmt.Errorf("--procs must be at least 1, got %d", procs)
	}
	return nil
}

func simulate(results *results, runs int, points int, shift float64, trend float64, estimate bool, seed int64) {
	defer wg.Done()
	var src rng.RNG = rng.NewNormalRNG(Mean, Stdev, rng.WithSeed(seed))
	if shift != 0 {
		src = rng.NewShiftRNG(src, shift*Stdev)
	}

	md := map[string]string{
		"shift": fmt.Sprintf("%g", shift),
		"trend": fmt.Sprintf("%g", trend),
		"seed":  fmt.Sprintf("%d", seed),
	}
	values := make([]float64, points)
	for i := 0; i < runs; i++ {
		gen := src
		if trend != 0 {
			gen = rng.NewTrendRNG(src, trend*Stdev)
		}
		for j := range values {
			values[j] = gen.Rand()
		}

		s, err := metric.NewSeries(metric.WithName("calibrate", md), metric.WithValues(values))
		if err != nil {
			log.Fatalf("unexpected error constructing series: %v", err)
		}
		limits := stat.Limits{Center: Mean, Dispersion: Stdev}
		if estimate {
			limits = stat.FromSeries(values)
		}
		v, err := rules.Evaluate(s, limits.Center, limits.Dispersion)
		if err != nil {
			log.Fatalf("unexpected error evaluating rules for %s: %v", s.Name(), err)
		}
		results.record(v)
	}
}
