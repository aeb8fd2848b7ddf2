package metric

import (
	"fmt"
	"math"
)

// Point is a single observation.  Index is the position of the observation in the source table and is
// preserved even when other rows are dropped, so indices are increasing but not necessarily contiguous.
type Point struct {
	Index int
	Value float64
}

// Series is an ordered set of observations for one measured parameter
type Series struct {
	name   Name
	points []Point
}

type SeriesOption func(s *Series) error

// Values returns a copy of the observation values in index order
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Indices returns a copy of the observation indices in order
func (s *Series) Indices() []int {
	out := make([]int, len(s.points))
	for i, p := range s.points {
		out[i] = p.Index
	}
	return out
}

// Points returns a copy of the observations
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of observations
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// Lookup returns the value recorded at the source index idx
func (s *Series) Lookup(idx int) (float64, bool) {
	lo, hi := 0, len(s.points)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case s.points[mid].Index == idx:
			return s.points[mid].Value, true
		case s.points[mid].Index < idx:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}

// Record appends an observation.  Indices must be strictly increasing and values finite.
func (s *Series) Record(idx int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("observation at index %d is not a finite number", idx)
	}
	if n := len(s.points); n > 0 && s.points[n-1].Index >= idx {
		return fmt.Errorf("observation index %d is not after index %d", idx, s.points[n-1].Index)
	}
	s.points = append(s.points, Point{Index: idx, Value: v})
	return nil
}

// Name returns the name of the series and associated metadata
func (s *Series) Name() string {
	return s.name.String()
}

// Parameter returns the name of the series without metadata
func (s *Series) Parameter() string {
	return s.name.Base()
}

// NameWith returns the name of the series with additional metadata, e.g. Glucose[limits=historical]
func (s *Series) NameWith(md map[string]string) string {
	return s.name.With(md).String()
}

// NewSeries creates a new empty series
func NewSeries(opts ...SeriesOption) (*Series, error) {
	s := &Series{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithName sets the name of the series
func WithName(name string, md map[string]string) SeriesOption {
	return func(s *Series) error {
		if name == "" {
			return fmt.Errorf("series name must be the non-empty string")
		}
		s.name = NewName(name, md)
		return nil
	}
}

// WithValues initializes a series from contiguous observations indexed from zero
func WithValues(values []float64) SeriesOption {
	return func(s *Series) error {
		start := 0
		if n := len(s.points); n > 0 {
			start = s.points[n-1].Index + 1
		}
		for i, v := range values {
			if err := s.Record(start+i, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithPoints initializes a series from indexed observations
func WithPoints(points []Point) SeriesOption {
	return func(s *Series) error {
		for _, p := range points {
			if err := s.Record(p.Index, p.Value); err != nil {
				return err
			}
		}
		return nil
	}
}
