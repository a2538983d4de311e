package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

// CreateUserCommand represents a command to register a new user
type CreateUserCommand struct {
	mediator.Returns[uuid.UUID]
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// NewCreateUserCommand builds the command from raw input. Names are trimmed
// and the email is normalized; everything else is left to the validators.
func NewCreateUserCommand(firstName, lastName, email string) *CreateUserCommand {
	return &CreateUserCommand{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     user.NormalizeEmail(email),
	}
}

// CreateUserHandler handles the CreateUser command
type CreateUserHandler struct {
	users user.Repository
	clock shared.Clock
}

// NewCreateUserHandler creates a new CreateUserHandler.
// If clock is nil, uses RealClock.
func NewCreateUserHandler(users user.Repository, clock shared.Clock) *CreateUserHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CreateUserHandler{
		users: users,
		clock: clock,
	}
}

// Handle executes the CreateUser command and returns the new user's id
func (h *CreateUserHandler) Handle(ctx context.Context, cmd *CreateUserCommand) (uuid.UUID, error) {
	existing, err := h.users.FindByEmail(ctx, cmd.Email)
	if err != nil && !user.IsNotFound(err) {
		return uuid.Nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return uuid.Nil, user.NewEmailTakenError(cmd.Email)
	}

	u, err := user.NewUser(cmd.FirstName, cmd.LastName, cmd.Email, h.clock)
	if err != nil {
		return uuid.Nil, err
	}

	if err := h.users.Add(ctx, u); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save user: %w", err)
	}

	return u.ID(), nil
}
