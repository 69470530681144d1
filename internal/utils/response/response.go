// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Two shapes are used:
//
//   - Response, the plain error body of the schools endpoints:
//     { "status": "error", "error": "School name already exists." }
//   - Envelope, the wrapper of every students endpoint:
//     { "success": true, "message": "...", "data": ..., "pagination": ... }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/go-playground/validator/v10"
)

// Response is the error body for endpoints that return bare objects on
// success.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope wraps every students response.
//
// Data is omitted when nil; an empty slice is still written as [].
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
	Errors     []FieldError      `json:"errors,omitempty"`
	TraceID    string            `json:"traceId,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON serialises data to JSON and writes it with the given status.
//
// Parameters:
//
//	w      — the ResponseWriter of the current request
//	status — HTTP status code (http.StatusOK, http.StatusCreated, ...)
//	data   — any JSON-encodable value: a DTO, a slice, an Envelope
//
// Example:
//
//	response.WriteJSON(w, http.StatusNotFound, response.Error("School not found."))
//
// Order matters: headers are frozen by WriteHeader, and the body must
// come after it.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	// ── Step 1: Headers ───────────────────────────────────────────────
	w.Header().Set("Content-Type", "application/json")

	// ── Step 2: Status line ───────────────────────────────────────────
	w.WriteHeader(status)

	// ── Step 3: Body ──────────────────────────────────────────────────
	// Encoder streams straight into w; no intermediate []byte.
	return json.NewEncoder(w).Encode(data)
}

// OK is the plain success body, used by the health check.
func OK() Response {
	return Response{Status: StatusOK}
}

// Error builds an error Response from a client-facing message.
func Error(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// GeneralError wraps err into an error Response. Only pass errors whose
// text is safe to show to clients.
func GeneralError(err error) Response {
	return Error(err.Error())
}

// ValidationError joins every field failure into one error Response.
//
//	{ "status": "error", "error": "name is required, address must not exceed 500 characters" }
func ValidationError(errs validator.ValidationErrors) Response {
	fields := FieldErrors(errs)
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, fe.Message)
	}
	return Error(strings.Join(msgs, ", "))
}

// Success builds a successful Envelope.
func Success(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Failure builds an unsuccessful Envelope.
func Failure(message string, errs ...FieldError) Envelope {
	return Envelope{Success: false, Message: message, Errors: errs}
}

// ─────────────────────────────────────────────────────────────────────────────
// FieldErrors turns validator output into client-facing messages.
//
// validator.ValidationErrors is a slice with one entry per failed rule.
// Field() already returns the JSON name (registered by the request
// package), so the messages match what the client sent:
//
//	"fullName is required"
//	"email must be a valid email address"
//	"phone must contain 10 or 11 digits"
//
// Example:
//
//	var verrs validator.ValidationErrors
//	if errors.As(err, &verrs) {
//		env := response.Failure("Validation failed.", response.FieldErrors(verrs)...)
//	}
// ─────────────────────────────────────────────────────────────────────────────
func FieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return out
}

// fieldMessage picks the wording for one failed tag.
func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	isString := e.Kind() == reflect.String

	switch e.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must not exceed %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone":
		return fmt.Sprintf("%s must contain 10 or 11 digits", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
