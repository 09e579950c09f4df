package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSeat  = errors.New("invalid seat: section 'a'-'h' and number 1-500")
	ErrInvalidCode  = errors.New("invalid code")
	ErrInvalidField = errors.New("invalid field")
)

// FieldError reports a single field that failed validation.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Rule)
	}
	return fmt.Sprintf("invalid field %s: %s=%s", e.Field, e.Rule, e.Param)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}
