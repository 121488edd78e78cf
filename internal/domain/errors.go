package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no property has the requested id.
var ErrNotFound = errors.New("property not found")

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every field constraint a property violates.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, field := range e.Fields {
		parts[i] = field.Field + ": " + field.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// QueryError reports a listing request the store cannot evaluate, such as an
// unknown sort field or a malformed filter value.
type QueryError struct {
	Message string
}

// NewQueryError formats a QueryError.
func NewQueryError(format string, args ...any) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...)}
}

func (e *QueryError) Error() string {
	return e.Message
}

// InvalidArgumentError reports out of range pagination input.
type InvalidArgumentError struct {
	Argument string
	Message  string
}

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(argument, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Argument: argument, Message: message}
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}
