package utils

import (
	"errors"
	"fmt"
)

// Error kinds the engine surfaces across its boundary. Handlers branch on these
// with errors.Is to pick a transport status; everything else is internal.
var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorInvalidState   = errors.New("invalid state")
	ErrorValidation     = errors.New("validation error")
	ErrorUnsupported    = errors.New("not available")
)

func NotFoundError(what string) error {
	return fmt.Errorf("%s: %w", what, ErrorRecordNotFound)
}

func InvalidStateError(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrorInvalidState)
}

func ValidationError(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrorValidation)
}

func UnsupportedError(what string) error {
	return fmt.Errorf("%s: %w", what, ErrorUnsupported)
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrorRecordNotFound) }
func IsInvalidState(err error) bool { return errors.Is(err, ErrorInvalidState) }
func IsValidation(err error) bool   { return errors.Is(err, ErrorValidation) }
func IsUnsupported(err error) bool  { return errors.Is(err, ErrorUnsupported) }

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
