// Package validation checks decoded request bodies against `validate` tags and
// reports failures as a list of per-field feedback entries.
//
// Messages are declared next to the rules with a `feedback` tag, e.g.
//
//	Email string `json:"email" validate:"required,email" feedback:"required=Email is required;email=Email is invalid"`
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Feedback struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type FieldError struct {
	Name     string   `json:"name"`
	Feedback Feedback `json:"feedback"`
}

func NewFieldError(name, errType, message string) FieldError {
	return FieldError{
		Name: name,
		Feedback: Feedback{
			Type:    errType,
			Message: message,
		},
	}
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns one entry per failing field, in field order.
// A nil result means s is valid.
func (v *Validator) Struct(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldError{NewFieldError("", "invalid", err.Error())}
	}

	structType := reflect.TypeOf(s)
	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	fieldErrors := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrors = append(fieldErrors, NewFieldError(
			fe.Field(),
			fe.Tag(),
			feedbackMessage(structType, fe),
		))
	}
	return fieldErrors
}

// DecodeJSON decodes a request body into dst and validates it. A body that
// is not valid JSON is reported as a single "body" entry.
func (v *Validator) DecodeJSON(body io.Reader, dst any) []FieldError {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			// an empty body fails the required rules instead
			return v.Struct(dst)
		}
		return []FieldError{NewFieldError("body", "json", "Request body must be valid JSON")}
	}
	return v.Struct(dst)
}

func feedbackMessage(structType reflect.Type, fe validator.FieldError) string {
	if field, ok := structType.FieldByName(fe.StructField()); ok {
		for _, rule := range strings.Split(field.Tag.Get("feedback"), ";") {
			tag, message, found := strings.Cut(rule, "=")
			if found && strings.TrimSpace(tag) == fe.Tag() {
				return strings.TrimSpace(message)
			}
		}
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " is invalid"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
