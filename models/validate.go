package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// global validator instance
var validate *validator.Validate

func init() {
	validate = newValidator()
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// FieldError is one failed rule on one field, addressed by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct performs validation on any struct that has validation tags.
// Failures are returned as *ValidationError.
func ValidateStruct(s any) error {
	if validate == nil {
		validate = newValidator()
	}
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := &ValidationError{}
	for _, e := range validationErrors {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: fieldMessage(e),
		})
	}
	return out
}

// fieldPath drops the root struct name: "Category.sub_request_types[0].name" -> "sub_request_types[0].name".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(e validator.FieldError) string {
	switch {
	case e.Field() == "keywords" && (e.Tag() == "required" || e.Tag() == "min"):
		return "Keywords cannot be empty."
	case strings.HasPrefix(e.Field(), "keywords[") && e.Tag() == "notblank":
		return "Each keyword must be a non-empty string."
	case e.Tag() == "notblank" || e.Tag() == "required":
		return "This field is required."
	default:
		return fmt.Sprintf("failed on rule '%s'", e.Tag())
	}
}
