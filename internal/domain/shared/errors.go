package shared

import (
	"fmt"
	"strings"
)

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
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized           = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden              = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrTenantNotFound         = NewDomainError("TENANT_NOT_FOUND", "No active tenant matches the identifier")
	ErrTenantInactive         = NewDomainError("TENANT_INACTIVE", "Tenant has been deactivated")
	ErrDuplicateInvoiceNumber = NewDomainError("DUPLICATE_INVOICE_NUMBER", "An invoice with this number already exists")
	ErrInvalidStateTransition = NewDomainError("INVALID_STATE_TRANSITION", "Operation not allowed in current invoice state")
	ErrValidationFailed       = NewDomainError("VALIDATION_FAILED", "Document failed structural validation")
	ErrSubmissionFailed       = NewDomainError("EXTERNAL_SUBMISSION_FAILED", "Tax authority rejected the submission")
	ErrConnectionFailure      = NewDomainError("CONNECTION_FAILURE", "Could not connect to tenant database")
)

// ValidationError carries the full list of structural violations found in a
// document. It matches ErrValidationFailed under errors.Is.
type ValidationError struct {
	Violations []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

// Is reports whether this error matches ErrValidationFailed
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError creates a ValidationError from a list of violations
func NewValidationError(violations []string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// SubmissionError carries the structured detail extracted from a tax-authority
// rejection. It matches ErrSubmissionFailed under errors.Is.
type SubmissionError struct {
	Detail string
}

// Error implements the error interface
func (e *SubmissionError) Error() string {
	if e.Detail == "" {
		return ErrSubmissionFailed.Message
	}
	return e.Detail
}

// Is reports whether this error matches ErrSubmissionFailed
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// ConnectionError carries a cause-specific message for a failed database
// connection during provisioning. It matches ErrConnectionFailure under
// errors.Is.
type ConnectionError struct {
	Host    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches ErrConnectionFailure
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailure
}
