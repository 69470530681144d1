package service

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel every *ValidationError unwraps to, so
// callers can test for any business-rule rejection with errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError is a business-rule rejection. Message is safe to show to
// clients as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Messages returned to clients.
const (
	msgSchoolMissing      = "The selected School does not exist."
	msgStudentIDExists    = "Student ID already exists."
	msgEmailExists        = "Email already exists."
	msgStudentIDTaken     = "Student ID is already taken by another student."
	msgEmailTaken         = "Email is already taken by another student."
	msgSchoolNameExists   = "School name already exists."
	msgPageSizeOutOfRange = "pageSize must be greater than 0."
)

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
