package validate

import (
	"sort"
	"strings"
)

// Error captures field level validation issues that callers can surface to
// users before any network call is made.
type Error struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	return e.Message()
}

// HasErrors reports whether any field level issues were recorded.
func (e *Error) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// Message folds all field messages into a single human-readable string, one
// message per line in stable field order.
func (e *Error) Message() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.FieldErrors[field])
	}
	return strings.Join(messages, "\n")
}

// Add records a field level validation error.
func (e *Error) Add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	e.FieldErrors[field] = message
}
