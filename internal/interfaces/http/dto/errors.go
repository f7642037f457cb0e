package dto

import "net/http"

// Transport-level error codes. Domain codes come from shared.DomainError.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Domain error codes surfaced by the costing engine.
const (
	ErrCodeNotFound                    = "NOT_FOUND"
	ErrCodeAlreadyExists               = "ALREADY_EXISTS"
	ErrCodeInvalidInput                = "INVALID_INPUT"
	ErrCodeConcurrencyConflict         = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState                = "INVALID_STATE"
	ErrCodeInsufficientStock           = "INSUFFICIENT_STOCK"
	ErrCodeInvalidCostData             = "INVALID_COST_DATA"
	ErrCodeInvalidAllocation           = "INVALID_ALLOCATION"
	ErrCodeUnsupportedAllocationMethod = "UNSUPPORTED_ALLOCATION_METHOD"
	ErrCodeUnsupportedStrategy         = "UNSUPPORTED_STRATEGY"
	ErrCodeInvalidPeriodTransition     = "INVALID_PERIOD_TRANSITION"
	ErrCodePeriodNotOpen               = "PERIOD_NOT_OPEN"
	ErrCodeAllocationUnbalanced        = "ALLOCATION_UNBALANCED"
	ErrCodeRegistrySealed              = "REGISTRY_SEALED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Invalid input -> 400
	ErrCodeInvalidInput:                http.StatusBadRequest,
	ErrCodeInvalidCostData:             http.StatusBadRequest,
	ErrCodeInvalidAllocation:           http.StatusBadRequest,
	ErrCodeUnsupportedAllocationMethod: http.StatusBadRequest,
	ErrCodeUnsupportedStrategy:         http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Conflicts -> 409
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeRegistrySealed:      http.StatusConflict,

	// State and business rules -> 422
	ErrCodeInvalidState:            http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:       http.StatusUnprocessableEntity,
	ErrCodeInvalidPeriodTransition: http.StatusUnprocessableEntity,
	ErrCodePeriodNotOpen:           http.StatusUnprocessableEntity,
	ErrCodeAllocationUnbalanced:    http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
