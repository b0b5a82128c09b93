package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Field constraints. The published API document is rendered from these
// values; struct tags cannot reference constants, so the validate tags
// below repeat them and TestValidateTagsMatchConstants keeps the two equal.
const (
	NameMinLen = 2
	NameMaxLen = 100
	AgeMin     = 18
	AgeMax     = 120

	SeedMinCount     = 1
	SeedMaxCount     = 100
	DefaultSeedCount = 5

	DefaultKeyCount = 1
)

// CreateUserRequest is the body of a create call. All fields are required.
type CreateUserRequest struct {
	Name  *string `json:"name" validate:"required,min=2,max=100"`
	Email *string `json:"email" validate:"required,email"`
	Age   *int    `json:"age" validate:"required,min=18,max=120"`
}

// UpdateUserRequest is the body of a partial update. Absent or null
// fields leave the stored value untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=2,max=100"`
	Email *string `json:"email" validate:"omitnil,email"`
	Age   *int    `json:"age" validate:"omitnil,min=18,max=120"`
}

// SeedUsersRequest is the body of a seed call.
type SeedUsersRequest struct {
	Count *int `json:"count" validate:"omitnil,min=1,max=100"`
}

// GenerateKeysRequest is the body of an API key generation call.
// Counts above the per-request maximum are capped, not rejected.
type GenerateKeysRequest struct {
	Count *int `json:"count" validate:"omitnil,min=1"`
}

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries every violation found in one input.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// NewValidationError builds a ValidationError from explicit violations.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// Validator checks request structs against their validate tags.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks s and returns a *ValidationError listing every
// violation, or nil.
func (v *Validator) Validate(s any, message string) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return &ValidationError{Message: message, Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

func fieldLabel(field string) string {
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// IsUserID reports whether id is a canonical version 4 UUID.
func IsUserID(id string) bool {
	if len(id) != 36 {
		return false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.Version() == 4 && parsed.Variant() == uuid.RFC4122
}
