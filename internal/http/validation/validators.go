package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required rejects blank values and values longer than maxLen runes.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fieldName + " is required."
		}
		return tooLong(fieldName, v, maxLen)
	}
}

// Optional accepts blank values but still enforces maxLen.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string { return tooLong(fieldName, v, maxLen) }
}

func tooLong(fieldName, v string, maxLen int) string {
	if utf8.RuneCountInString(strings.TrimSpace(v)) > maxLen {
		return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
	}
	return ""
}

// OptionalIntRange validates an optional integer between minVal and maxVal.
func OptionalIntRange(fieldName string, minVal, maxVal int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fieldName + " must be a number."
		}
		if i < minVal || i > maxVal {
			return fmt.Sprintf("%s must be between %d and %d.", fieldName, minVal, maxVal)
		}
		return ""
	}
}

// DateTime validates that a required field parses with one of layouts.
func DateTime(fieldName string, layouts ...string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		for _, layout := range layouts {
			if _, err := time.Parse(layout, v); err == nil {
				return ""
			}
		}
		return fieldName + " is not a valid date."
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Valid reports whether no field failed.
func (fv *FieldValidator) Valid() bool {
	return len(fv.errors) == 0
}
