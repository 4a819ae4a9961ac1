package optimization

import (
	"errors"
	"fmt"
)

// Kind classifies optimization errors into the failure classes the worker
// distinguishes. Evaluation failures never cross the worker boundary; the
// class exists so logs and results can tell them apart from real failures.
type Kind string

const (
	// KindConfiguration marks a malformed parameter space or invalid
	// hyperparameters, detected before any iteration runs.
	KindConfiguration Kind = "configuration"
	// KindEvaluation marks a failed objective evaluation. Always absorbed
	// locally into the sentinel penalty, never surfaced by a worker.
	KindEvaluation Kind = "evaluation"
	// KindAlgorithm marks an unexpected failure inside a search loop or a
	// black-box strategy.
	KindAlgorithm Kind = "algorithm"
)

// Error is an optimization error with context that can be wrapped with
// additional information.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewConfigError creates a configuration error with the given message.
func NewConfigError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// ConfigErrorf creates a configuration error with a formatted message.
func ConfigErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// AlgorithmErrorf creates an algorithm error with a formatted message.
func AlgorithmErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAlgorithm, Message: fmt.Sprintf(format, args...)}
}

// WrapAlgorithmError wraps an existing error as an algorithm failure,
// preserving the original classification when err is already an *Error.
// If err is nil, WrapAlgorithmError returns nil.
func WrapAlgorithmError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Message: message, Err: err}
	}
	return &Error{Kind: KindAlgorithm, Message: message, Err: err}
}

// IsConfigurationError reports whether err is, or wraps, a configuration error.
func IsConfigurationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindConfiguration
}
