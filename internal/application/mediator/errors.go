package mediator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Taxonomy names shared by every classified failure
const (
	TaxonomyValidationFailed        = "ValidationFailed"
	TaxonomyDomainRuleViolation     = "DomainRuleViolation"
	TaxonomyRepositoryUnavailable   = "RepositoryUnavailable"
	TaxonomyCircuitOpen             = "CircuitOpen"
	TaxonomyUnregisteredRequestType = "UnregisteredRequestType"
	TaxonomyBindingError            = "BindingError"
	TaxonomyUnhandledFailure        = "UnhandledFailure"
	TaxonomyCancelled               = "Cancelled"
)

// Classified is implemented by failures that belong to the dispatch taxonomy.
// Domain and infrastructure errors implement it structurally, without
// importing this package.
type Classified interface {
	error
	Taxonomy() string
}

// TaxonomyOf returns the taxonomy of the outermost classified error in err's
// chain, or "" when err is unclassified.
func TaxonomyOf(err error) string {
	var c Classified
	if errors.As(err, &c) {
		return c.Taxonomy()
	}
	return ""
}

// IsClassified reports whether err belongs to the dispatch taxonomy
func IsClassified(err error) bool {
	return TaxonomyOf(err) != ""
}

// ValidationFailedError is returned when one or more validators reject a request
type ValidationFailedError struct {
	Errors []FieldError
}

func (e *ValidationFailedError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationFailedError) Taxonomy() string { return TaxonomyValidationFailed }

// UnregisteredRequestTypeError is returned when no handler is bound to the request's type
type UnregisteredRequestTypeError struct {
	RequestType reflect.Type
}

func (e *UnregisteredRequestTypeError) Error() string {
	if e.RequestType == nil {
		return "request cannot be nil"
	}
	return fmt.Sprintf("no handler registered for type %s", e.RequestType)
}

func (e *UnregisteredRequestTypeError) Taxonomy() string { return TaxonomyUnregisteredRequestType }

// BindingError reports a registry configuration problem found by Build
type BindingError struct {
	RequestType reflect.Type
	Reason      string
}

func (e *BindingError) Error() string {
	if e.RequestType == nil {
		return "binding error: " + e.Reason
	}
	return fmt.Sprintf("binding error for %s: %s", e.RequestType, e.Reason)
}

func (e *BindingError) Taxonomy() string { return TaxonomyBindingError }

// UnhandledFailureError wraps a failure no decorator or handler classified
type UnhandledFailureError struct {
	Cause error
}

func (e *UnhandledFailureError) Error() string {
	return fmt.Sprintf("unhandled failure: %v", e.Cause)
}

func (e *UnhandledFailureError) Unwrap() error { return e.Cause }

func (e *UnhandledFailureError) Taxonomy() string { return TaxonomyUnhandledFailure }

// CancelledError is returned when the dispatch context is cancelled or times out.
// It is neither a success nor a domain failure.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("dispatch cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

func (e *CancelledError) Taxonomy() string { return TaxonomyCancelled }
