package eureka

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypePrecondition ErrorType = "precondition"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeType         ErrorType = "type"
	ErrorTypeInternal     ErrorType = "internal"
)

// EurekaError represents the errors raised by schema loading, type casting and
// serialization.
type EurekaError struct {
	Type     ErrorType           `json:"type"`
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Resource *ResourceIdentifier `json:"resource,omitempty"`
	Field    string              `json:"field,omitempty"`
	Details  map[string]any      `json:"details,omitempty"`
	Cause    error               `json:"-"`
}

func (e *EurekaError) Error() string {
	if e.Resource != nil {
		return fmt.Sprintf("[%s:%s] resource %s/%s: %s",
			e.Type, e.Code, e.Resource.Type, e.Resource.ID, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *EurekaError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a single detail
func (e *EurekaError) WithDetail(key string, value any) *EurekaError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adds a cause
func (e *EurekaError) WithCause(cause error) *EurekaError {
	e.Cause = cause
	return e
}

// WithField adds field context
func (e *EurekaError) WithField(field string) *EurekaError {
	e.Field = field
	return e
}

// Error codes
const (
	// Schema declaration errors
	ErrCodeUnknownConstraint = "UNKNOWN_CONSTRAINT"
	ErrCodeConstraintArity   = "CONSTRAINT_ARITY"
	ErrCodeUnknownType       = "UNKNOWN_TYPE"
	ErrCodeSchemaInvalid     = "SCHEMA_INVALID"
	ErrCodeSchemaExists      = "SCHEMA_EXISTS"
	ErrCodeSchemaNotFound    = "SCHEMA_NOT_FOUND"

	// Type casting
	ErrCodeCastFailed = "CAST_FAILED"

	// Validation
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidPayload   = "INVALID_PAYLOAD"

	// Serialization preconditions
	ErrCodeMissingDatabase   = "MISSING_DATABASE"
	ErrCodeInvalidDatabase   = "INVALID_DATABASE"
	ErrCodeMissingBaseURI    = "MISSING_BASE_URI"
	ErrCodeInvalidBaseURI    = "INVALID_BASE_URI"
	ErrCodeMissingInstance   = "MISSING_INSTANCE"
	ErrCodeInvalidInstance   = "INVALID_INSTANCE"
	ErrCodeInclusionFailed   = "INCLUSION_FAILED"
	ErrCodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"

	ErrCodeInternalError = "INTERNAL_ERROR"
)

// ============================================================================
// EurekaError Constructors
// ============================================================================

// NewEurekaError creates a new EurekaError
func NewEurekaError(errorType ErrorType, code, message string) *EurekaError {
	return &EurekaError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// NewSchemaConfigError creates an error for a malformed schema declaration.
func NewSchemaConfigError(field, message string) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeSchemaInvalid,
		Message: message,
		Field:   field,
	}
}

// NewUnknownConstraintError reports a constraint name missing from the table.
func NewUnknownConstraintError(field, name string) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeUnknownConstraint,
		Message: fmt.Sprintf("unknown constraint %q", name),
		Field:   field,
	}
}

// NewUnknownTypeError reports a type tag that is neither primitive nor a
// registered schema.
func NewUnknownTypeError(field, typeName string) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeUnknownType,
		Message: fmt.Sprintf("unknown type %q", typeName),
		Field:   field,
	}
}

// NewTypeError creates a casting error
func NewTypeError(value any, target string) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypeType,
		Code:    ErrCodeCastFailed,
		Message: fmt.Sprintf("TypeError: cannot cast %#v to %s", value, target),
	}
}

// NewPreconditionError creates a serialization precondition error
func NewPreconditionError(code, message string) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypePrecondition,
		Code:    code,
		Message: message,
	}
}

// NewResourceNotFoundError creates a not-found error for a (type, id) lookup
func NewResourceNotFoundError(typeName, id string) *EurekaError {
	return &EurekaError{
		Type:     ErrorTypeNotFound,
		Code:     ErrCodeResourceNotFound,
		Message:  "resource not found",
		Resource: &ResourceIdentifier{ID: id, Type: typeName},
	}
}

// NewSchemaNotFoundError creates a not-found error for a schema name
func NewSchemaNotFoundError(name string) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeSchemaNotFound,
		Message: fmt.Sprintf("schema not found: %s", name),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *EurekaError {
	return &EurekaError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// ============================================================================
// Classification helpers
// ============================================================================

func hasType(err error, t ErrorType) bool {
	var ee *EurekaError
	return errors.As(err, &ee) && ee.Type == t
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return hasType(err, ErrorTypeNotFound) }

// IsConfigError reports whether err is a schema declaration error
func IsConfigError(err error) bool { return hasType(err, ErrorTypeConfig) }

// IsPrecondition reports whether err is a serialization precondition error
func IsPrecondition(err error) bool { return hasType(err, ErrorTypePrecondition) }

// IsTypeError reports whether err is a casting error
func IsTypeError(err error) bool { return hasType(err, ErrorTypeType) }

// ============================================================================
// Validation errors
// ============================================================================

// ValidationDetail is one failed constraint.
type ValidationDetail struct {
	// Path is the dotted location of the value, e.g. "tags.2".
	Path    string         `json:"path"`
	Message string         `json:"message"`
	Kind    string         `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ValidationError collects every failed constraint of one validation run.
type ValidationError struct {
	Details []ValidationDetail `json:"details"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Details) == 0 {
		return "ValidationError"
	}
	return "ValidationError: " + e.Details[0].Message
}

// Paths lists the paths of all details in report order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		paths = append(paths, d.Path)
	}
	return paths
}

// Summary joins every detail message, one per line.
func (e *ValidationError) Summary() string {
	lines := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		lines = append(lines, d.Path+": "+d.Message)
	}
	return strings.Join(lines, "\n")
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
