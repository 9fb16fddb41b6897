package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when an update targets an id that does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError rejects user input before any mutation happens.
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		if e.Param == "1" {
			return fmt.Sprintf("%s is required", e.Field)
		}
		return fmt.Sprintf("%s must be at least %s characters", e.Field, e.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field, e.Param)
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", e.Field)
	case "after_start":
		return fmt.Sprintf("%s must not be before the start date", e.Field)
	}
	return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Rule)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates in and converts the first failure into a ValidationError.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		if ns := fe.Namespace(); strings.Contains(ns, "[") {
			field = ns[strings.Index(ns, ".")+1:]
		}
		return &ValidationError{Field: field, Rule: fe.Tag(), Param: fe.Param()}
	}
	return fmt.Errorf("validate: %w", err)
}

// checkDateRange rejects an end date before the start date. Both are
// YYYY-MM-DD strings, which order lexically.
func checkDateRange(start, end string) error {
	if start != "" && end != "" && end < start {
		return &ValidationError{Field: "endDate", Rule: "after_start"}
	}
	return nil
}

// IsValidation reports whether err is a user-input rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
