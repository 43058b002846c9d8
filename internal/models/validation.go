package models

import "fmt"

// ValidationError rejects a mutation whose value does not fit the
// target field. The activity is left unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
