package rules

import "math"

// thresholds are the control lines at center ± k·dispersion for k = 1, 2, 3
type thresholds struct {
	center     float64
	dispersion float64
	plus1      float64
	plus2      float64
	plus3      float64
	minus1     float64
	minus2     float64
	minus3     float64
}

func newThresholds(center, dispersion float64) (thresholds, error) {
	if !finite(center) || !finite(dispersion) || dispersion <= 0 {
		return thresholds{}, ErrLimitsUndefined
	}
	return thresholds{
		center:     center,
		dispersion: dispersion,
		plus1:      center + dispersion,
		plus2:      center + 2*dispersion,
		plus3:      center + 3*dispersion,
		minus1:     center - dispersion,
		minus2:     center - 2*dispersion,
		minus3:     center - 3*dispersion,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// allAbove reports whether every value is strictly greater than limit
func allAbove(w []float64, limit float64) bool {
	for _, v := range w {
		if !(v > limit) {
			return false
		}
	}
	return true
}

// allBelow reports whether every value is strictly less than limit
func allBelow(w []float64, limit float64) bool {
	for _, v := range w {
		if !(v < limit) {
			return false
		}
	}
	return true
}

func increasing(w []float64) bool {
	for i := 1; i < len(w); i++ {
		if !(w[i] > w[i-1]) {
			return false
		}
	}
	return true
}

func decreasing(w []float64) bool {
	for i := 1; i < len(w); i++ {
		if !(w[i] < w[i-1]) {
			return false
		}
	}
	return true
}
