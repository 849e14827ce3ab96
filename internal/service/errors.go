package service

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/eximdesk/internal/validation"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validate runs the binding rules and reports failures as ErrInvalidInput.
func validate(v interface{}) error {
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, validation.Describe(err))
	}
	return nil
}
