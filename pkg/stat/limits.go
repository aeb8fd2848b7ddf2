package stat

import (
	"fmt"
	"math"
)

// Limits are the center line and dispersion (one standard deviation) used to derive control limits
type Limits struct {
	Center     float64 `json:"center"`
	Dispersion float64 `json:"dispersion"`
}

// UCL is the upper control limit at +3s
func (l Limits) UCL() float64 {
	return l.Center + 3*l.Dispersion
}

// LCL is the lower control limit at -3s
func (l Limits) LCL() float64 {
	return l.Center - 3*l.Dispersion
}

// Line returns the control line at center + k·dispersion
func (l Limits) Line(k float64) float64 {
	return l.Center + k*l.Dispersion
}

// Validate returns an error when no control limits can be derived from l
func (l Limits) Validate() error {
	switch {
	case math.IsNaN(l.Dispersion) || math.IsInf(l.Dispersion, 0):
		return fmt.Errorf("standard deviation is missing")
	case l.Dispersion <= 0:
		return fmt.Errorf("standard deviation must be positive, got %g", l.Dispersion)
	case math.IsNaN(l.Center) || math.IsInf(l.Center, 0):
		return fmt.Errorf("mean is missing")
	}
	return nil
}

// FromSeries estimates limits from the observations: the sample mean and the sample standard deviation
// (n-1 denominator).  With fewer than two observations the dispersion is NaN.
func FromSeries(values []float64) Limits {
	if len(values) == 0 {
		return Limits{Center: math.NaN(), Dispersion: math.NaN()}
	}
	m := mean(values)
	if len(values) < 2 {
		return Limits{Center: m, Dispersion: math.NaN()}
	}
	return Limits{Center: m, Dispersion: math.Sqrt(variance(values, m))}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	s := 0.0
	for _, v := range values {
		s = s + v
	}
	return s / float64(len(values))
}

func variance(values []float64, mean float64) float64 {
	s := 0.0
	for _, v := range values {
		s = s + math.Pow(v-mean, 2)
	}
	return s / float64(len(values)-1)
}
