package fuzzy

import "errors"

var (
	// ErrOutOfDomain is returned when a crisp input is NaN, or lies outside
	// its variable's universe while strict domain checking is enabled.
	ErrOutOfDomain = errors.New("input outside variable universe")
	// ErrNoRuleFired is returned when the aggregated output of a consequent
	// has zero area and cannot be defuzzified.
	ErrNoRuleFired = errors.New("no rule fired")
	// ErrMissingInput is returned when an antecedent has no crisp value.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidBreakpoints is returned for unordered membership breakpoints.
	ErrInvalidBreakpoints = errors.New("invalid membership breakpoints")
)
