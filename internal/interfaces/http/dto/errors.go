package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBackendUnavailable is used when the REST backend failed or was unreachable
	ErrCodeBackendUnavailable = "ERR_BACKEND_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized   = "ERR_UNAUTHORIZED"
	ErrCodeForbidden      = "ERR_FORBIDDEN"
	ErrCodeInvalidSession = "ERR_INVALID_SESSION"
)

// Resource error codes
const (
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeConflict         = "ERR_CONFLICT"
	ErrCodeCartItemNotFound = "ERR_CART_ITEM_NOT_FOUND"
)

// Business rule error codes
const (
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeConfirmationRequired = "ERR_CONFIRMATION_REQUIRED"
	ErrCodeSuperseded           = "ERR_SUPERSEDED"
	ErrCodeEmptyCart            = "ERR_EMPTY_CART"
	ErrCodeNoBuyerDetail        = "ERR_NO_BUYER_DETAIL"
	ErrCodeNoOrder              = "ERR_NO_ORDER"
	ErrCodeInvalidStep          = "ERR_INVALID_STEP"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBackendUnavailable: http.StatusBadGateway,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeInvalidSession: http.StatusUnauthorized,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeCartItemNotFound: http.StatusNotFound,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusPreconditionRequired,
	ErrCodeSuperseded:           http.StatusConflict,
	ErrCodeEmptyCart:            http.StatusUnprocessableEntity,
	ErrCodeNoBuyerDetail:        http.StatusUnprocessableEntity,
	ErrCodeNoOrder:              http.StatusUnprocessableEntity,
	ErrCodeInvalidStep:          http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"CONFLICT":              ErrCodeConflict,
	"CONFIRMATION_REQUIRED": ErrCodeConfirmationRequired,
	"SUPERSEDED":            ErrCodeSuperseded,
	"INVALID_SESSION":       ErrCodeInvalidSession,
	"INVALID_PROFILE":       ErrCodeBadRequest,
	"EMPTY_CART":            ErrCodeEmptyCart,
	"NO_BUYER_DETAIL":       ErrCodeNoBuyerDetail,
	"NO_ORDER":              ErrCodeNoOrder,
	"INVALID_STEP":          ErrCodeInvalidStep,
	"CART_ITEM_NOT_FOUND":   ErrCodeCartItemNotFound,
	"CART_INVALID_ITEM":     ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
