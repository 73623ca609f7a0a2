package analysis

import (
	"errors"
	"fmt"
)

// ErrDegenerateInput is returned when an analysis has nothing to work with,
// such as concentration statistics over all-zero contributions.
var ErrDegenerateInput = errors.New("degenerate input")

// ValidationError reports a malformed analysis parameter. It maps to a 400
// at the HTTP boundary and is never retried.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidParam(param, format string, args ...any) error {
	return &ValidationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
