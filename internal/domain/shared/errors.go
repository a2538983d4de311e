package shared

import "fmt"

// DomainError is the base error type for all business-rule violations.
// Types embedding it are classified as DomainRuleViolation.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Taxonomy classifies the error for the dispatch pipeline
func (e *DomainError) Taxonomy() string {
	return "DomainRuleViolation"
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

// ValidationError reports an invariant a factory refused to construct
type ValidationError struct {
	*DomainError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %s", field, message)},
		Field:       field,
	}
}

// Lookup errors

type NotFoundError struct {
	*DomainError
	Entity string
	Key    string
}

func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s not found: %s", entity, key)},
		Entity:      entity,
		Key:         key,
	}
}

// Infrastructure errors

// RepositoryUnavailableError reports that a repository could not reach its backing store
type RepositoryUnavailableError struct {
	Repository string
	Cause      error
}

func (e *RepositoryUnavailableError) Error() string {
	return fmt.Sprintf("%s repository unavailable: %v", e.Repository, e.Cause)
}

func (e *RepositoryUnavailableError) Unwrap() error {
	return e.Cause
}

// Taxonomy classifies the error for the dispatch pipeline
func (e *RepositoryUnavailableError) Taxonomy() string {
	return "RepositoryUnavailable"
}

func NewRepositoryUnavailableError(repository string, cause error) *RepositoryUnavailableError {
	return &RepositoryUnavailableError{Repository: repository, Cause: cause}
}

// CancelledError reports that a collaborator gave up because the caller's
// context was cancelled or timed out. It is neither a success nor a
// business-rule violation.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("operation cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// Taxonomy classifies the error for the dispatch pipeline
func (e *CancelledError) Taxonomy() string {
	return "Cancelled"
}

func NewCancelledError(cause error) *CancelledError {
	return &CancelledError{Cause: cause}
}
