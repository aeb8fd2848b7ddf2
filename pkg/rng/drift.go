package rng

var _ RNG = &DriftRNG{}

// DriftRNG adds a systematic error to another generator: a constant shift plus a trend that grows by slope
// with every draw
type DriftRNG struct {
	src   RNG
	shift float64
	slope float64
	n     int
}

func (r *DriftRNG) Rand() float64 {
	v := r.src.Rand() + r.shift + r.slope*float64(r.n)
	r.n++
	return v
}

// NewShiftRNG offsets every draw of src by shift
func NewShiftRNG(src RNG, shift float64) *DriftRNG {
	return &DriftRNG{src: src, shift: shift}
}

// NewTrendRNG adds slope·i to the i-th draw of src
func NewTrendRNG(src RNG, slope float64) *DriftRNG {
	return &DriftRNG{src: src, slope: slope}
}
