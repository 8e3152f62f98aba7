package usecase

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ppob-backend/pkg/utils"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream provider failed")
)

// Error is a client-facing failure: Message is safe to show, Kind decides the
// status code and Fields carries per-field validation messages.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(fields map[string]string) *Error {
	return &Error{
		Kind:    ErrValidation,
		Message: "validation failed: " + utils.FormatValidationErrors(fields),
		Fields:  fields,
	}
}

// validate runs struct validation and returns a *Error when it fails.
func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}
	return nil
}

// parseID turns a path id into a uuid; a malformed id is a validation error.
func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newError(ErrValidation, "invalid %s id", what)
	}
	return id, nil
}
