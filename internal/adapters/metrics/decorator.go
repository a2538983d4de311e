package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
)

// Decorator creates a factory whose decorator records, per request type,
// the handling duration and the outcome. Failures are labelled with their
// taxonomy, e.g. status="ValidationFailed".
//
// A nil collector (metrics disabled) leaves every type undecorated.
func Decorator(collector *DispatchMetricsCollector) mediator.DecoratorFactory {
	return func(d mediator.Descriptor) mediator.Decorator {
		if collector == nil {
			return nil
		}
		name := d.Name

		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			collector.started(name)
			defer collector.finished(name)

			start := time.Now()
			response, err := next(ctx, request)
			collector.RecordDispatch(name, statusOf(err), time.Since(start).Seconds())

			return response, err
		}
	}
}

func statusOf(err error) string {
	if err == nil {
		return StatusSuccess
	}
	if taxonomy := mediator.TaxonomyOf(err); taxonomy != "" {
		return taxonomy
	}
	return StatusUnclassified
}
