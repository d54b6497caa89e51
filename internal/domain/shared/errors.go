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
	ErrNotFound         = NewDomainError("NOT_FOUND", "Record not found")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrStoreUnavailable = NewDomainError("STORE_UNAVAILABLE", "Record store is unavailable")
	ErrRunSuperseded    = NewDomainError("RUN_SUPERSEDED", "Reconciliation run was superseded by a newer request")
	ErrRunNotFound      = NewDomainError("RUN_NOT_FOUND", "Reconciliation run not found")
)
