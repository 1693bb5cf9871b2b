package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeLineValidation    = "ERR_LINE_VALIDATION"
	ErrCodeSequenceExhausted = "ERR_SEQUENCE_EXHAUSTED"
	ErrCodeLedgerDrift       = "ERR_LEDGER_DRIFT"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeLineValidation:    http.StatusUnprocessableEntity,
	ErrCodeSequenceExhausted: http.StatusConflict,
	ErrCodeLedgerDrift:       http.StatusInternalServerError,
}

// domainCodeMapping folds the domain layer's error codes onto the API codes.
// Unlisted domain codes are treated as input validation failures, which
// covers the INVALID_* family the constructors emit.
var domainCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":      ErrCodeConcurrencyConflict,
	"INVALID_STATE":             ErrCodeInvalidState,
	"INVALID_STATUS_TRANSITION": ErrCodeInvalidState,
	"SEQUENCE_EXHAUSTED":        ErrCodeSequenceExhausted,
	"LEDGER_DRIFT":              ErrCodeLedgerDrift,
	"OVER_RETURN":               ErrCodeInvalidState,
}

// NormalizeErrorCode maps a domain error code to its API error code
func NormalizeErrorCode(domainCode string) string {
	if code, ok := domainCodeMapping[domainCode]; ok {
		return code
	}
	return ErrCodeValidation
}

// GetHTTPStatus returns the HTTP status code for an API error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
