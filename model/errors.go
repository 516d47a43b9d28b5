// Package model carries the shared error taxonomy and enumerations used by
// the grid, dynamics and time stepping packages.
package model

import (
	"fmt"
	"runtime"
)

type ErrorCategory uint8

const (
	ConfigurationError ErrorCategory = iota
	GeometryError
	SolverError
	MeshError
	IOError
)

func (c ErrorCategory) String() string {
	switch c {
	case ConfigurationError:
		return "configuration"
	case GeometryError:
		return "geometry"
	case SolverError:
		return "solver"
	case MeshError:
		return "mesh"
	case IOError:
		return "io"
	}
	return "unknown"
}

// Error is a categorized model error with the source location of its origin.
type Error struct {
	Category    ErrorCategory
	Message     string
	File        string
	Line        int
	recoverable bool
	wrapped     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at %s:%d: %s", e.Category, e.File, e.Line, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// Recoverable reports whether the failing step may be retried, e.g. with a
// reduced time step. Only solver errors are ever recoverable.
func (e *Error) Recoverable() bool { return e.recoverable }

func Errorf(cat ErrorCategory, format string, args ...interface{}) error {
	return newError(cat, false, nil, format, args...)
}

// RecoverableErrorf marks a solver failure that the driver may retry.
func RecoverableErrorf(format string, args ...interface{}) error {
	return newError(SolverError, true, nil, format, args...)
}

func WrapIO(err error, format string, args ...interface{}) error {
	return newError(IOError, false, err, format, args...)
}

func newError(cat ErrorCategory, recoverable bool, wrapped error, format string, args ...interface{}) error {
	_, file, line, _ := runtime.Caller(2)
	return &Error{
		Category:    cat,
		Message:     fmt.Sprintf(format, args...),
		File:        file,
		Line:        line,
		recoverable: recoverable,
		wrapped:     wrapped,
	}
}

// CategoryOf returns the category of err if it is a model error.
func CategoryOf(err error) (cat ErrorCategory, ok bool) {
	if e, isModel := err.(*Error); isModel {
		return e.Category, true
	}
	return 0, false
}

// IsRecoverable reports whether err is a recoverable model error.
func IsRecoverable(err error) bool {
	if e, isModel := err.(*Error); isModel {
		return e.Recoverable()
	}
	return false
}
