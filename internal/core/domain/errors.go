package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidChoice = errors.New("choice must be one of: yes, no")
	ErrInvalidBody   = errors.New("invalid request body")
	ErrInternal      = errors.New("internal server error")
)

// ValidationError reports a rejected input field. Nothing is persisted when
// one is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
