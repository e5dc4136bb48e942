package store

import (
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound        = errors.New("note not found")
	ErrMediaNotFound       = errors.New("media not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCountdownNotFound   = errors.New("countdown not found")
)

// ValidationError rejects a write before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
