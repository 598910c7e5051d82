package dto

import (
	"net/http"

	"github.com/dropship/backend/internal/domain/shared"
)

// Error code constants. Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"

	// ErrCodeUnknownConfiguration is returned when a request names a
	// marketplace, addon or currency pair the reference tables do not define
	ErrCodeUnknownConfiguration = "ERR_UNKNOWN_CONFIGURATION"
	ErrCodeInvalidState         = "ERR_INVALID_STATE"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnknownConfiguration: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code, 500 when the
// code is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// kindCodes maps domain error kinds to their wire codes
var kindCodes = map[*shared.DomainError]string{
	shared.ErrNotFound:             ErrCodeNotFound,
	shared.ErrAlreadyExists:        ErrCodeAlreadyExists,
	shared.ErrInvalidInput:         ErrCodeInvalidInput,
	shared.ErrUnknownConfiguration: ErrCodeUnknownConfiguration,
	shared.ErrInvalidState:         ErrCodeInvalidState,
	shared.ErrUnauthorized:         ErrCodeUnauthorized,
	shared.ErrForbidden:            ErrCodeForbidden,
}

// CodeForError resolves the wire code of a domain error from its kind. ok is
// false when err carries no DomainError or its kind has no mapping.
func CodeForError(err error) (code string, ok bool) {
	kind := shared.KindOf(err)
	if kind == nil {
		return "", false
	}
	code, ok = kindCodes[kind]
	return code, ok
}
