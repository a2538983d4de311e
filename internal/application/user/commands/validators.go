package commands

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/validation"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

var (
	nameLimitTag     = fmt.Sprintf("max=%d", user.MaxNameLength)
	nameLimitMessage = fmt.Sprintf("must be at most %d characters", user.MaxNameLength)
)

// FirstNameRequired rejects an empty first name
func FirstNameRequired(v *validator.Validate) mediator.Validator {
	return validation.Field(v, "first_name", func(c *CreateUserCommand) any { return c.FirstName },
		"required", "is required")
}

// LastNameRequired rejects an empty last name
func LastNameRequired(v *validator.Validate) mediator.Validator {
	return validation.Field(v, "last_name", func(c *CreateUserCommand) any { return c.LastName },
		"required", "is required")
}

// FirstNameWithinLimit rejects first names longer than user.MaxNameLength
// characters, the same bound NewUser enforces.
func FirstNameWithinLimit(v *validator.Validate) mediator.Validator {
	return validation.Field(v, "first_name", func(c *CreateUserCommand) any { return c.FirstName },
		nameLimitTag, nameLimitMessage)
}

// LastNameWithinLimit rejects last names longer than user.MaxNameLength
// characters.
func LastNameWithinLimit(v *validator.Validate) mediator.Validator {
	return validation.Field(v, "last_name", func(c *CreateUserCommand) any { return c.LastName },
		nameLimitTag, nameLimitMessage)
}

// EmailWellFormed rejects empty or malformed email addresses
func EmailWellFormed(v *validator.Validate) mediator.Validator {
	return validation.Field(v, "email", func(c *CreateUserCommand) any { return c.Email },
		"required,email", "must be a valid email address")
}

// EmailAvailable rejects emails that already belong to a user. Malformed
// emails are left to EmailWellFormed.
func EmailAvailable(v *validator.Validate, users user.Repository) mediator.Validator {
	return mediator.ValidatorFunc[*CreateUserCommand](func(ctx context.Context, c *CreateUserCommand) ([]mediator.FieldError, error) {
		if v.VarCtx(ctx, c.Email, "required,email") != nil {
			return nil, nil
		}

		existing, err := users.FindByEmail(ctx, c.Email)
		if err != nil {
			if user.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if existing == nil {
			return nil, nil
		}
		return []mediator.FieldError{{Field: "email", Message: "is already registered"}}, nil
	})
}

// CreateUserValidators returns every validator of CreateUserCommand in
// reporting order.
func CreateUserValidators(v *validator.Validate, users user.Repository) []mediator.Validator {
	return []mediator.Validator{
		FirstNameRequired(v),
		LastNameRequired(v),
		FirstNameWithinLimit(v),
		LastNameWithinLimit(v),
		EmailWellFormed(v),
		EmailAvailable(v, users),
	}
}
