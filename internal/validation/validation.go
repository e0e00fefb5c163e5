package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single field-level validation failure, keyed by the JSON field name
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		UseJSONFieldNames(v)
		instance = v
	})
	return instance
}

// UseJSONFieldNames makes v report failures under the JSON field name
func UseJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Struct validates s against its `validate` tags and returns the failures in
// field declaration order. A nil result means s is valid.
func Struct(s any) []FieldError {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	return ParseValidationErrors(err)
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []FieldError {
	var fieldErrors []FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return fieldErrors
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	case "eqfield":
		return fe.Field() + " must match " + fieldNameOf(fe.Param())
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// fieldNameOf maps the Go field named by a cross-field tag param to its JSON name
func fieldNameOf(param string) string {
	switch param {
	case "Password":
		return "password"
	default:
		return param
	}
}
