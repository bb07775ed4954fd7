package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced issue does not exist.
// ErrConflict is returned on creation with an already-used issue ID.
// ErrUnavailable is returned when the storage backend cannot be reached.
var (
	ErrNotFound    = errors.New("issue not found")
	ErrConflict    = errors.New("issue already exists")
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError reports malformed caller input: a bad enum value, an
// empty required field, or a duplicate assignee. The caller can recover by
// correcting the input; it is never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
