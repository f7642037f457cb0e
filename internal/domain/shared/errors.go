package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// Costing errors
var (
	ErrInvalidCostData             = NewDomainError("INVALID_COST_DATA", "Invalid cost data")
	ErrInvalidAllocation           = NewDomainError("INVALID_ALLOCATION", "Invalid allocation input")
	ErrUnsupportedAllocationMethod = NewDomainError("UNSUPPORTED_ALLOCATION_METHOD", "Unsupported allocation method")
	ErrUnsupportedStrategy         = NewDomainError("UNSUPPORTED_STRATEGY", "Unsupported cost strategy")
	ErrInvalidPeriodTransition     = NewDomainError("INVALID_PERIOD_TRANSITION", "Invalid period status transition")
	ErrPeriodNotOpen               = NewDomainError("PERIOD_NOT_OPEN", "Cost period is not open")
	ErrAllocationUnbalanced        = NewDomainError("ALLOCATION_UNBALANCED", "Allocated amounts do not sum to the total")
)
