package validation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
)

// Decorator creates a factory whose decorator runs every validator registered
// for the request type. Failures from all validators are collected in
// registration order; if there are any, the inner handler is never called and
// the dispatch fails with *mediator.ValidationFailedError.
//
// Request types without validators are left undecorated.
func Decorator() mediator.DecoratorFactory {
	return func(d mediator.Descriptor) mediator.Decorator {
		if len(d.Validators) == 0 {
			return nil
		}
		validators := d.Validators

		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			var failures []mediator.FieldError
			for _, v := range validators {
				found, err := v.Validate(ctx, request)
				if err != nil {
					return nil, fmt.Errorf("failed to validate %s: %w", d.Name, err)
				}
				failures = append(failures, found...)
			}

			if len(failures) > 0 {
				return nil, &mediator.ValidationFailedError{Errors: failures}
			}
			return next(ctx, request)
		}
	}
}
