package mediator

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Request is implemented by every command and query. R is the result the
// request produces; request types satisfy it by embedding Returns[R].
type Request[R any] interface {
	resultOf() R
}

// Returns binds a request type to its result type at compile time.
//
// Example:
//
//	type CreateUserCommand struct {
//	    mediator.Returns[uuid.UUID]
//	    FirstName string
//	}
type Returns[R any] struct{}

func (Returns[R]) resultOf() (r R) { return r }

// Unit is the result of requests that produce nothing.
type Unit struct{}

// Response represents the result of handling a request
type Response = any

// Handler handles one request type and produces its result.
// Handlers may hold injected collaborators but no per-call state.
type Handler[Req Request[Res], Res any] interface {
	Handle(ctx context.Context, request Req) (Res, error)
}

// HandleFunc is an adapter to allow the use of ordinary functions as Handlers.
type HandleFunc[Req Request[Res], Res any] func(ctx context.Context, request Req) (Res, error)

// Handle calls f(ctx, request).
func (f HandleFunc[Req, Res]) Handle(ctx context.Context, request Req) (Res, error) {
	return f(ctx, request)
}

// HandlerFunc is the type-erased form every handler and decorator is reduced to
type HandlerFunc func(ctx context.Context, request any) (Response, error)

// Decorator wraps handler execution with a cross-cutting concern. It may run
// logic before or after next, or return without calling next at all.
type Decorator func(ctx context.Context, request any, next HandlerFunc) (Response, error)

// DecoratorFactory builds the decorator for one request type. Returning nil
// leaves the request type undecorated by this factory.
type DecoratorFactory func(d Descriptor) Decorator

// Descriptor is what a DecoratorFactory knows about the request type it decorates.
type Descriptor struct {
	Type       reflect.Type
	Name       string
	Validators []Validator
}

// FieldError is one field/message pair reported by a validator.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks one aspect of a request. An empty slice means valid; an
// error means the check itself could not run.
type Validator interface {
	Validate(ctx context.Context, request any) ([]FieldError, error)
}

// ValidatorFunc adapts a typed function to a Validator.
type ValidatorFunc[Req any] func(ctx context.Context, request Req) ([]FieldError, error)

// Validate implements Validator
func (f ValidatorFunc[Req]) Validate(ctx context.Context, request any) ([]FieldError, error) {
	req, ok := request.(Req)
	if !ok {
		return nil, fmt.Errorf("invalid request type: validator expects %s, got %T", reflect.TypeOf((*Req)(nil)).Elem(), request)
	}
	return f(ctx, req)
}

// RequestName returns the bare type name of a request type.
// For example "*commands.CreateUserCommand" becomes "CreateUserCommand".
func RequestName(t reflect.Type) string {
	if t == nil {
		return "UnknownRequest"
	}
	name := strings.TrimPrefix(t.String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// NameOf returns the bare type name of a request value.
func NameOf(request any) string {
	if request == nil {
		return "UnknownRequest"
	}
	return RequestName(reflect.TypeOf(request))
}
