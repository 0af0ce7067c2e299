package domain

import "errors"

var (
	// ErrInvalidSpan is returned when a span has no days to generate.
	ErrInvalidSpan = errors.New("invalid date span")

	// ErrInvalidParams is returned for generation parameters that cannot shape a signal.
	ErrInvalidParams = errors.New("invalid generation parameters")
)
