package mediator

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"
)

// Sender dispatches requests to their composed handler chain
type Sender interface {
	Send(ctx context.Context, request any) (Response, error)
}

// Mediator is the read-only dispatch registry produced by Builder.Build.
// It is safe for concurrent use.
type Mediator struct {
	routes map[reflect.Type]HandlerFunc
}

// Send looks up the composed chain for the request's runtime type and invokes
// it. The outcome of the chain is returned unchanged.
func (m *Mediator) Send(ctx context.Context, request any) (Response, error) {
	if request == nil {
		return nil, &UnregisteredRequestTypeError{}
	}

	requestType := reflect.TypeOf(request)
	handler, ok := m.routes[requestType]
	if !ok {
		return nil, &UnregisteredRequestTypeError{RequestType: requestType}
	}

	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Cause: err}
	}

	return handler(ctx, request)
}

// Handles reports whether a chain is bound to the request's type
func (m *Mediator) Handles(request any) bool {
	if request == nil {
		return false
	}
	_, ok := m.routes[reflect.TypeOf(request)]
	return ok
}

// Routes returns the names of all bound request types, sorted
func (m *Mediator) Routes() []string {
	names := make([]string, 0, len(m.routes))
	for t := range m.routes {
		names = append(names, RequestName(t))
	}
	sort.Strings(names)
	return names
}

// Dispatch sends request through s and returns its result with the type the
// request declares.
//
// Example:
//
//	id, err := mediator.Dispatch(ctx, med, cmd) // id is uuid.UUID
func Dispatch[Res any](ctx context.Context, s Sender, request Request[Res]) (Res, error) {
	var zero Res

	resp, err := s.Send(ctx, request)
	if err != nil {
		return zero, err
	}
	if resp == nil {
		return zero, nil
	}

	result, ok := resp.(Res)
	if !ok {
		return zero, fmt.Errorf("unexpected result type for %s: expected %s, got %T", NameOf(request), reflect.TypeOf((*Res)(nil)).Elem(), resp)
	}
	return result, nil
}

// Live holds the current Mediator and lets a single writer replace it while
// readers keep dispatching. A Mediator is never mutated in place.
type Live struct {
	current atomic.Pointer[Mediator]
}

// NewLive creates a holder serving m
func NewLive(m *Mediator) *Live {
	l := &Live{}
	l.current.Store(m)
	return l
}

// Swap installs next and returns the Mediator it replaced. A nil next is ignored.
func (l *Live) Swap(next *Mediator) *Mediator {
	if next == nil {
		return l.current.Load()
	}
	return l.current.Swap(next)
}

// Current returns the Mediator dispatches are currently routed to
func (l *Live) Current() *Mediator {
	return l.current.Load()
}

// Send dispatches through the current Mediator
func (l *Live) Send(ctx context.Context, request any) (Response, error) {
	m := l.current.Load()
	if m == nil {
		return nil, &UnregisteredRequestTypeError{RequestType: reflect.TypeOf(request)}
	}
	return m.Send(ctx, request)
}
