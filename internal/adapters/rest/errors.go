package rest

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/throttle"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Fields  []mediator.FieldError `json:"fields,omitempty"`
}

// StatusFor maps a dispatch failure onto an HTTP status code
func StatusFor(err error) int {
	if user.IsNotFound(err) {
		return http.StatusNotFound
	}
	// A factory refusing its input is a bad request even when no
	// validation decorator screened it first
	var invalid *shared.ValidationError
	if errors.As(err, &invalid) {
		return http.StatusUnprocessableEntity
	}

	switch mediator.TaxonomyOf(err) {
	case mediator.TaxonomyValidationFailed:
		return http.StatusUnprocessableEntity
	case mediator.TaxonomyDomainRuleViolation:
		return http.StatusConflict
	case mediator.TaxonomyRepositoryUnavailable, mediator.TaxonomyCircuitOpen:
		return http.StatusServiceUnavailable
	case mediator.TaxonomyCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	body := errorResponse{
		Error:   mediator.TaxonomyOf(err),
		Message: err.Error(),
	}

	var failed *mediator.ValidationFailedError
	if errors.As(err, &failed) {
		body.Fields = failed.Errors
	}
	var invalid *shared.ValidationError
	if errors.As(err, &invalid) {
		body.Fields = []mediator.FieldError{{
			Field:   invalid.Field,
			Message: strings.TrimPrefix(invalid.Message, invalid.Field+": "),
		}}
	}
	var open *throttle.CircuitOpenError
	if errors.As(err, &open) {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(open.RetryAfter.Seconds()))))
	}
	if status == http.StatusNotFound {
		body.Error = "NotFound"
	}
	if status == http.StatusInternalServerError {
		// internal details stay in the logs
		if body.Error == "" {
			body.Error = mediator.TaxonomyUnhandledFailure
		}
		body.Message = "internal error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func writeBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:   "BadRequest",
		Message: err.Error(),
	})
}
