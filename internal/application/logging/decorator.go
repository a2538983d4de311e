package logging

import (
	"context"
	"time"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/pkg/utils"
)

// Observation messages written around every dispatch
const (
	MessageStarted   = "handling started"
	MessageCompleted = "handling completed"
)

// Decorator creates a factory whose decorator logs a "handling started"
// observation before the inner call and a "handling completed" one after it.
// The request, its result and its error pass through untouched.
//
// With a nil logger the logger carried by the dispatch context is used.
func Decorator(logger Logger) mediator.DecoratorFactory {
	return func(d mediator.Descriptor) mediator.Decorator {
		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			log := logger
			if log == nil {
				log = LoggerFromContext(ctx)
			}

			requestID := RequestIDFromContext(ctx)
			if requestID == "" {
				requestID = utils.GenerateRequestID(d.Name)
				ctx = WithRequestID(ctx, requestID)
			}

			log.Log(LevelInfo, MessageStarted, map[string]interface{}{
				"request":    d.Name,
				"request_id": requestID,
			})

			start := time.Now()
			resp, err := next(ctx, request)

			metadata := map[string]interface{}{
				"request":     d.Name,
				"request_id":  requestID,
				"outcome":     "success",
				"duration_ms": time.Since(start).Milliseconds(),
			}
			level := LevelInfo
			if err != nil {
				level = LevelError
				metadata["outcome"] = "failure"
				metadata["error"] = err.Error()
				if taxonomy := mediator.TaxonomyOf(err); taxonomy != "" {
					metadata["taxonomy"] = taxonomy
				}
			}
			log.Log(level, MessageCompleted, metadata)

			return resp, err
		}
	}
}
