package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
)

// Trace records the order in which decorators and handlers run
type Trace struct {
	mu     sync.Mutex
	events []string
}

// NewTrace creates an empty trace
func NewTrace() *Trace {
	return &Trace{}
}

// Record appends an event
func (t *Trace) Record(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

// Events returns a copy of the recorded events
func (t *Trace) Events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.events...)
}

// Reset clears the trace
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// Decorator returns a factory whose decorator records "<name>-before" and
// "<name>-after" around the inner call.
func (t *Trace) Decorator(name string) mediator.DecoratorFactory {
	return func(d mediator.Descriptor) mediator.Decorator {
		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			t.Record(name + "-before")
			resp, err := next(ctx, request)
			t.Record(name + "-after")
			return resp, err
		}
	}
}
