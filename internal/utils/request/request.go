// Package request decodes and validates incoming JSON payloads and reads
// typed values from the URL.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyBody is returned by DecodeJSON when the body has no content.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrInvalidJSON wraps every other decoding failure.
	ErrInvalidJSON = errors.New("request body is not valid JSON")

	// ErrInvalidID is returned by ParseID for a non-numeric or non-positive id.
	ErrInvalidID = errors.New("invalid id: must be a positive integer")
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)

// validate is shared: a *validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("fullName"), which is what the
	// client sent, rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// "phone": 10 or 11 digits, nothing else.
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("request: register phone validation: %v", err))
	}
	return v
}

// DecodeJSON reads r.Body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// Validate checks v's validate:"..." tags. A failure is returned as
// validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}

// ParseID converts a path segment into a positive int64.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter. A missing or empty
// value yields def.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", name)
	}
	return n, nil
}
