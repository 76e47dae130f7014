package validation

import (
	"strings"

	"github.com/kbukum/kafkaboot/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// Check adds an error when cond is false.
func (v *Validator) Check(cond bool, field, message string) {
	if !cond {
		v.AddError(field, message)
	}
}

// Merge folds the result of a struct validation into the collector.
func (v *Validator) Merge(err error) {
	if err == nil {
		return
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		v.AddError("", err.Error())
		return
	}
	if fields, ok := appErr.Details["fields"].([]FieldError); ok {
		v.errors = append(v.errors, fields...)
		return
	}
	v.AddError("", appErr.Message)
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Error returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, 0, len(v.errors))
	for _, e := range v.errors {
		if e.Field == "" {
			messages = append(messages, e.Message)
			continue
		}
		messages = append(messages, e.Field+": "+e.Message)
	}
	return errors.InvalidConfig(strings.Join(messages, "; ")).WithDetail("fields", v.errors)
}
