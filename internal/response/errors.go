package response

import "errors"

var (
	// ErrInvalidSweep indicates a sweep with no points or inverted range.
	ErrInvalidSweep = errors.New("response: invalid frequency sweep")
	// ErrNoParameters indicates an empty candidate vector.
	ErrNoParameters = errors.New("response: no parameter values")
	// ErrNoTargets indicates a request without target curves.
	ErrNoTargets = errors.New("response: no target curves")
)
