package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	kind    *DomainError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the error kind so errors.Is(err, ErrInvalidInput) holds for
// every error created with NewDomainErrorOfKind(ErrInvalidInput, ...).
func (e *DomainError) Unwrap() error {
	if e.kind == nil {
		return nil
	}
	return e.kind
}

// Kind returns the broad category of the error, or the error itself when it
// has none.
func (e *DomainError) Kind() *DomainError {
	if e.kind == nil {
		return e
	}
	return e.kind
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorOfKind creates a domain error that belongs to a broader kind
func NewDomainErrorOfKind(kind *DomainError, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		kind:    kind,
	}
}

// KindOf returns the kind of the first DomainError in err's chain, or nil
func KindOf(err error) *DomainError {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return nil
	}
	return domainErr.Kind()
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnknownConfiguration = NewDomainError("UNKNOWN_CONFIGURATION", "Required configuration is missing")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnauthorized         = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden            = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)
