package user

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/mediator-go/internal/domain/shared"
)

// EmailTakenError is returned when another user already owns the email
type EmailTakenError struct {
	*shared.DomainError
	Email string
}

func NewEmailTakenError(email string) *EmailTakenError {
	return &EmailTakenError{
		DomainError: shared.NewDomainError(fmt.Sprintf("email %s is already registered", email)),
		Email:       email,
	}
}

// NewUserNotFoundError reports a missing user by id or email
func NewUserNotFoundError(key string) *shared.NotFoundError {
	return shared.NewNotFoundError("user", key)
}

// IsNotFound reports whether err is a missing-entity error
func IsNotFound(err error) bool {
	var nf *shared.NotFoundError
	return errors.As(err, &nf)
}
