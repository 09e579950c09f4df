package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	minSeatLen    = 2
	maxSeatLen    = 4
	minSeatNumber = 1
	maxSeatNumber = 500
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("seat", func(fl validator.FieldLevel) bool {
		return ValidateSeat(fl.Field().String()) == nil
	})

	return v
}

// ValidateSeat checks a seat such as "c149": a section letter 'a'-'h'
// (any case) followed by a number in [1, 500].
func ValidateSeat(seat string) error {
	if len(seat) < minSeatLen || len(seat) > maxSeatLen {
		return ErrInvalidSeat
	}

	section := unicode.ToLower(rune(seat[0]))
	if section < 'a' || section > 'h' {
		return ErrInvalidSeat
	}

	number, err := strconv.Atoi(seat[1:])
	if err != nil || number < minSeatNumber || number > maxSeatNumber {
		return ErrInvalidSeat
	}

	return nil
}

// ValidateCode rejects negative event codes.
func ValidateCode(code int64) error {
	if code < 0 {
		return ErrInvalidCode
	}
	return nil
}

// Validate checks an Event or Ticket against its field rules and
// translates the first failure into a domain error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "seat":
		return fmt.Errorf("%w: %q", ErrInvalidSeat, fe.Value())
	case fe.Field() == "code" || fe.Field() == "event_code":
		return ErrInvalidCode
	}

	return &FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
}
