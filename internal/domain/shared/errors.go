package shared

// DomainError is a business-rule violation. The code is stable and machine
// readable; the HTTP layer maps it to a status, the message is for humans.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so a sentinel compares equal to any
// error carrying the same code regardless of message
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across bounded contexts. Context-specific rule
// violations construct their own DomainError with a dedicated code.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrSequenceExhausted   = NewDomainError("SEQUENCE_EXHAUSTED", "Could not allocate a unique document number")
	ErrOverReturn          = NewDomainError("OVER_RETURN", "Cannot return more quantity than was sold")
)
