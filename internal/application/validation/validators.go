package validation

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
)

// Field checks a single aspect of Req: the value extracted by value must
// satisfy the validator tag, otherwise one entry (field, message) is reported.
//
// Example:
//
//	validation.Field(v, "email", func(c *CreateUserCommand) any { return c.Email },
//	    "required,email", "must be a valid email address")
func Field[Req any](v *validator.Validate, field string, value func(Req) any, tag, message string) mediator.Validator {
	return mediator.ValidatorFunc[Req](func(ctx context.Context, request Req) ([]mediator.FieldError, error) {
		err := v.VarCtx(ctx, value(request), tag)
		if err == nil {
			return nil, nil
		}
		if _, err := fieldErrors(err); err != nil {
			return nil, err
		}
		return []mediator.FieldError{{Field: field, Message: message}}, nil
	})
}

// Struct checks every `validate` tag on Req and reports one entry per failing field
func Struct[Req any](v *validator.Validate) mediator.Validator {
	return mediator.ValidatorFunc[Req](func(ctx context.Context, request Req) ([]mediator.FieldError, error) {
		err := v.StructCtx(ctx, request)
		if err == nil {
			return nil, nil
		}
		return fieldErrors(err)
	})
}
