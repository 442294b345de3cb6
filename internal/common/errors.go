package common

import "fmt"

// ValidationError reports a malformed hash string, an out-of-range field or a
// failed entity validation. It is surfaced to the caller synchronously and is
// never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
