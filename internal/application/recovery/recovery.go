// Package recovery translates failures that escape a handler into the
// dispatch taxonomy.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
)

// PanicError wraps a value recovered from a panicking handler together with
// the stack at the point of recovery.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recognizer reports whether err should pass through untranslated
type Recognizer func(err error) bool

type options struct {
	recognizers   []Recognizer
	capturePanics bool
}

// Option configures the translation decorator
type Option func(*options)

// WithRecognizer adds a check for failures that are already meaningful to
// callers even though they carry no taxonomy.
func WithRecognizer(r Recognizer) Option {
	return func(o *options) {
		if r != nil {
			o.recognizers = append(o.recognizers, r)
		}
	}
}

// WithoutPanicRecovery lets panics propagate instead of translating them
func WithoutPanicRecovery() Option {
	return func(o *options) {
		o.capturePanics = false
	}
}

// Decorator creates a factory whose decorator re-signals every failure that
// is not a recognized taxonomy member as *mediator.UnhandledFailureError,
// keeping the original failure as its cause. Context cancellation and
// deadline expiry become *mediator.CancelledError.
func Decorator(opts ...Option) mediator.DecoratorFactory {
	o := options{capturePanics: true}
	for _, opt := range opts {
		opt(&o)
	}

	return func(d mediator.Descriptor) mediator.Decorator {
		return func(ctx context.Context, request any, next mediator.HandlerFunc) (resp mediator.Response, err error) {
			if o.capturePanics {
				defer func() {
					if r := recover(); r != nil {
						resp = nil
						err = &mediator.UnhandledFailureError{
							Cause: &PanicError{Value: r, Stack: string(debug.Stack())},
						}
					}
				}()
			}

			resp, err = next(ctx, request)
			if err == nil {
				return resp, nil
			}
			return resp, o.translate(err)
		}
	}
}

func (o *options) translate(err error) error {
	if mediator.IsClassified(err) {
		return err
	}
	for _, recognized := range o.recognizers {
		if recognized(err) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &mediator.CancelledError{Cause: err}
	}
	return &mediator.UnhandledFailureError{Cause: err}
}
