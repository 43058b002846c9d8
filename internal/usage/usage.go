// Package usage defines the error type for malformed or out-of-range
// command input. The interactive loop prints these and keeps running.
package usage

import "fmt"

// Error describes bad command input: a missing argument, an
// unrecognized value, or an index outside the current context.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a usage error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
