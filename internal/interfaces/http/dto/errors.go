package dto

import (
	"net/http"
	"strings"
)

// Standardized error codes, format ERR_<CATEGORY>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to standardized codes.
// Codes not listed here fall through to the prefix rules in
// NormalizeErrorCode.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VERSION_CONFLICT":     ErrCodeConcurrencyConflict,
	"ASSIGNMENT_CONFLICT":  ErrCodeConflict,
	"SELF_RELATION":        ErrCodeInvalidInput,
	"UNEXPECTED_ENTITY":    ErrCodeInvalidInput,
	"UNPARSEABLE_XML":      ErrCodeInvalidInput,
	"UNSUPPORTED_MODULE":   ErrCodeInvalidInput,

	"DUPLICATE_MODULE_RECORD": ErrCodeAlreadyExists,
	"CYCLE_FARM_MISMATCH":     ErrCodeBusinessRule,
	"DEDUCTION_MISMATCH":      ErrCodeBusinessRule,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized
// format. Unmapped codes are bucketed by prefix so that input and state
// violations never surface as internal errors.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainErrorCodeMapping[code]; ok {
		return mapped
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return ErrCodeNotFound
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "MISSING_"):
		return ErrCodeInvalidInput
	case strings.HasPrefix(code, "ALREADY_"), strings.HasPrefix(code, "NOT_"):
		return ErrCodeInvalidState
	}
	return code
}
