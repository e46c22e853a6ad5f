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
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)

// Document lifecycle errors shared by invoices and purchase orders
var (
	ErrImmutableDocument = NewDomainError("IMMUTABLE_DOCUMENT", "Document can only be modified in draft status")
	ErrVoidedDocument    = NewDomainError("VOIDED_DOCUMENT", "Operation not allowed on a void invoice")
	ErrAlreadySettled    = NewDomainError("ALREADY_SETTLED", "Invoice is already fully paid")
	ErrNotIssued         = NewDomainError("NOT_ISSUED", "Invoice must be issued before accepting payments")
	ErrInvalidAmount     = NewDomainError("INVALID_AMOUNT", "Amount must be positive with at most two decimal places")
	ErrInvalidQuantity   = NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
)

// NewInvalidTransitionError builds the error returned when a document is asked
// to move between two states its transition table does not allow.
func NewInvalidTransitionError(from, to string) *DomainError {
	return NewDomainError("INVALID_TRANSITION", "Cannot transition from "+from+" to "+to)
}

// NewReferenceNotFoundError reports a dangling reference to another aggregate
// (customer, supplier, catalog item) by kind and id.
func NewReferenceNotFoundError(kind, id string) *DomainError {
	return NewDomainError("REFERENCE_NOT_FOUND", kind+" not found: "+id)
}

// NewConflictError reports a referential-integrity conflict, e.g. deleting a
// customer that still has invoices.
func NewConflictError(message string) *DomainError {
	return NewDomainError("CONFLICT", message)
}
