package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Builder collects handler bindings, decorator lists and validators during
// startup. Build validates the whole configuration at once and produces an
// immutable Mediator; the Builder is not safe for concurrent use.
type Builder struct {
	entries   map[reflect.Type]*binding
	order     []reflect.Type
	defaults  []DecoratorFactory
	overrides []override
}

// binding holds everything registered for one request type
type binding struct {
	handlers   []HandlerFunc
	decorators []DecoratorFactory
	decorated  bool
	validators []Validator
	problems   []string
}

// override is a decorator list addressed by request name, as config does
type override struct {
	name       string
	decorators []DecoratorFactory
}

// NewBuilder creates an empty registry builder
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[reflect.Type]*binding),
	}
}

// UseDefaults appends factories to the default decorator list, applied to
// every request type that has no list of its own. The first factory is the
// outermost decorator.
func (b *Builder) UseDefaults(factories ...DecoratorFactory) *Builder {
	b.defaults = append(b.defaults, factories...)
	return b
}

// Override sets the decorator list for the request type named name (see
// RequestName). It replaces the default list and any list set with Decorate.
// Names match case-insensitively since config keys arrive lower-cased.
func (b *Builder) Override(name string, factories ...DecoratorFactory) *Builder {
	b.overrides = append(b.overrides, override{name: name, decorators: factories})
	return b
}

func (b *Builder) binding(t reflect.Type) *binding {
	e, ok := b.entries[t]
	if !ok {
		e = &binding{}
		b.entries[t] = e
		b.order = append(b.order, t)
	}
	return e
}

// RegisterHandler binds h to the request type Req.
//
// Example:
//
//	mediator.RegisterHandler[*commands.CreateUserCommand, uuid.UUID](b, handler)
func RegisterHandler[Req Request[Res], Res any](b *Builder, h Handler[Req, Res]) {
	requestType := reflect.TypeOf((*Req)(nil)).Elem()
	e := b.binding(requestType)

	if h == nil {
		e.problems = append(e.problems, "handler cannot be nil")
		return
	}

	e.handlers = append(e.handlers, func(ctx context.Context, request any) (Response, error) {
		req, ok := request.(Req)
		if !ok {
			return nil, fmt.Errorf("invalid request type: expected %s, got %T", requestType, request)
		}
		return h.Handle(ctx, req)
	})
}

// Decorate sets the decorator list for Req, replacing the default list.
// Calling it with no factories leaves Req undecorated.
func Decorate[Req any](b *Builder, factories ...DecoratorFactory) {
	e := b.binding(reflect.TypeOf((*Req)(nil)).Elem())
	e.decorated = true
	e.decorators = append(e.decorators, factories...)
}

// AddValidators registers validators for Req. They are handed to decorator
// factories through the Descriptor; the validation decorator runs them.
func AddValidators[Req any](b *Builder, validators ...Validator) {
	e := b.binding(reflect.TypeOf((*Req)(nil)).Elem())
	for _, v := range validators {
		if v == nil {
			e.problems = append(e.problems, "validator cannot be nil")
			continue
		}
		e.validators = append(e.validators, v)
	}
}

// Build checks every request type known to the builder and composes its chain.
// A request type with zero or several handlers, or any other registration
// problem, fails the build with BindingErrors joined together.
func (b *Builder) Build() (*Mediator, error) {
	var problems []error

	lists := make(map[reflect.Type][]DecoratorFactory)
	for _, o := range b.overrides {
		matched := false
		for _, t := range b.order {
			if strings.EqualFold(RequestName(t), o.name) {
				lists[t] = o.decorators
				matched = true
			}
		}
		if !matched {
			problems = append(problems, &BindingError{Reason: fmt.Sprintf("decorator override for unknown request type %q", o.name)})
		}
	}

	routes := make(map[reflect.Type]HandlerFunc, len(b.order))
	for _, t := range b.order {
		e := b.entries[t]

		for _, p := range e.problems {
			problems = append(problems, &BindingError{RequestType: t, Reason: p})
		}
		if t.Kind() == reflect.Interface {
			problems = append(problems, &BindingError{RequestType: t, Reason: "request type must be a concrete type"})
			continue
		}

		switch n := len(e.handlers); {
		case n == 0:
			problems = append(problems, &BindingError{RequestType: t, Reason: "no handler registered"})
			continue
		case n > 1:
			problems = append(problems, &BindingError{RequestType: t, Reason: fmt.Sprintf("%d handlers registered, expected exactly one", n)})
			continue
		}

		factories := b.defaults
		if e.decorated {
			factories = e.decorators
		}
		if list, ok := lists[t]; ok {
			factories = list
		}
		if hasNilFactory(factories) {
			problems = append(problems, &BindingError{RequestType: t, Reason: "decorator factory cannot be nil"})
			continue
		}

		d := Descriptor{
			Type:       t,
			Name:       RequestName(t),
			Validators: slices.Clone(e.validators),
		}
		routes[t] = compose(d, e.handlers[0], factories)
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	return &Mediator{routes: routes}, nil
}

func hasNilFactory(factories []DecoratorFactory) bool {
	for _, f := range factories {
		if f == nil {
			return true
		}
	}
	return false
}

// compose wraps handler so that factories[0] becomes the outermost decorator
func compose(d Descriptor, handler HandlerFunc, factories []DecoratorFactory) HandlerFunc {
	composed := handler
	for i := len(factories) - 1; i >= 0; i-- {
		decorator := factories[i](d)
		if decorator == nil {
			continue
		}
		next := composed
		composed = func(ctx context.Context, request any) (Response, error) {
			return decorator(ctx, request, next)
		}
	}
	return composed
}
