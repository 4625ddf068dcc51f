package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrAccountDisabled = errors.New("account is disabled")
)

// Error carries a readable message while matching one of the sentinel kinds
// through errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and passes other errors through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "%s not found", what)
	}
	return err
}

func invalidState(format string, args ...interface{}) error {
	return newError(ErrInvalidState, format, args...)
}

func validation(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func forbidden(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

// isUniqueViolation recognises duplicate-key errors from the supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
