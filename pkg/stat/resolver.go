package stat

import (
	"errors"
	"fmt"
	"strings"
)

// Source selects where the control limits for a parameter come from
type Source string

const (
	// FromData calculates limits from the QC observations themselves
	FromData = Source("data")
	// Historical uses the pre-supplied historical mean and standard deviation
	Historical = Source("historical")
	// Specification uses the pre-supplied specification mean and standard deviation
	Specification = Source("specification")
)

// ErrNoLimits is returned when a limits table has no entry for the parameter
var ErrNoLimits = errors.New("no limits for parameter")

// ErrUnknownSource is returned for a limits source other than data, historical or specification
var ErrUnknownSource = errors.New("unknown limits source")

// ParseSource matches a limits source by name
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "data", "qc", "calculate":
		return FromData, nil
	case "historical", "history":
		return Historical, nil
	case "specification", "spec":
		return Specification, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// LimitsTable maps a parameter name to its pre-supplied limits
type LimitsTable map[string]Limits

// Resolver looks up the limits of a parameter from one of the three sources
type Resolver struct {
	Historical    LimitsTable
	Specification LimitsTable
}

// Resolve returns the limits for parameter.  Values are only used for the FromData source.  The returned limits
// are not validated, an undefined dispersion is passed through to the rule engine which refuses it.
func (r *Resolver) Resolve(parameter string, source Source, values []float64) (Limits, error) {
	switch source {
	case FromData:
		return FromSeries(values), nil
	case Historical:
		return lookup(r.Historical, parameter, source)
	case Specification:
		return lookup(r.Specification, parameter, source)
	default:
		return Limits{}, fmt.Errorf("%w: %q", ErrUnknownSource, string(source))
	}
}

func lookup(table LimitsTable, parameter string, source Source) (Limits, error) {
	l, ok := table[parameter]
	if !ok {
		return Limits{}, fmt.Errorf("%w %q in %s limits", ErrNoLimits, parameter, source)
	}
	return l, nil
}
