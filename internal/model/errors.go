package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoInvoicesFound   = errors.New("no invoices found")
	ErrXMLMalformed      = errors.New("malformed XML")
	ErrIncomplete        = errors.New("incomplete invoice")
	ErrNoLineItems       = errors.New("no line items")
)

// ParseError represents parsing errors with kind and field context
type ParseError struct {
	Kind    error
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	kind := "parse error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", kind, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", kind, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of this error
func (e *ParseError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewParseError creates a new parse error
func NewParseError(kind error, field, message string, cause error) *ParseError {
	return &ParseError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}
