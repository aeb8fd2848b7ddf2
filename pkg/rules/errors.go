package rules

import "errors"

var (
	// ErrLimitsUndefined is returned when the dispersion is zero, negative or not a finite number, or the center
	// is not finite.  No rule is evaluated.
	ErrLimitsUndefined = errors.New("control limits undefined: standard deviation is zero or missing")

	// ErrUnknownRule is returned for a rule identifier outside the six Westgard rules
	ErrUnknownRule = errors.New("unknown westgard rule")
)
