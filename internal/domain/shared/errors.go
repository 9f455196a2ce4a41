package shared

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorKind classifies a failure so the transport layer can pick a status code
// without inspecting messages.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindInvalidToken
	KindTokenExpired
	KindInvalidCredentials
	KindRateLimited
)

// String returns the kind name used in logs
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidToken:
		return "invalid_token"
	case KindTokenExpired:
		return "token_expired"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// FieldError describes a single rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind    `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error with a resource specific code
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewConflictError creates a conflict error with a resource specific code
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewValidationError creates a validation error carrying every offending field
func NewValidationError(message string, details ...FieldError) *DomainError {
	e := NewDomainError(KindValidation, CodeValidation, message)
	e.Details = details
	return e
}

// Error codes shared across modules
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDuplicateEntry     = "DUPLICATE_ENTRY"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Authentication failures
var (
	ErrUnauthorized       = NewDomainError(KindUnauthorized, CodeUnauthorized, "Authentication required")
	ErrInvalidToken       = NewDomainError(KindInvalidToken, CodeInvalidToken, "Invalid token")
	ErrTokenExpired       = NewDomainError(KindTokenExpired, CodeTokenExpired, "Token has expired")
	ErrInvalidCredentials = NewDomainError(KindInvalidCredentials, CodeInvalidCredentials, "Invalid email or password")
)

// ErrNotFound is returned by repositories when a row does not exist
var ErrNotFound = errors.New("record not found")

// UniqueViolationError is returned by repositories when a unique constraint rejects a write
type UniqueViolationError struct {
	Field      string
	Constraint string
}

func (e *UniqueViolationError) Error() string {
	if e.Field == "" {
		return "unique constraint violation"
	}
	return fmt.Sprintf("unique constraint violation on %s", e.Field)
}

// WrapOperation hides an unexpected storage failure behind a generic internal
// error. Errors that are already classified pass through unchanged.
func WrapOperation(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return &DomainError{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: message,
		cause:   pkgerrors.WithStack(err),
	}
}

// IsClassified reports whether err already carries a kind the HTTP layer maps
// to something more specific than 500.
func IsClassified(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind != KindInternal
	}
	var uniqueErr *UniqueViolationError
	if errors.As(err, &uniqueErr) {
		return true
	}
	return errors.Is(err, ErrNotFound)
}
