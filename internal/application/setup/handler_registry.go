package setup

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/user/commands"
	"github.com/andrescamacho/mediator-go/internal/application/user/queries"
	"github.com/andrescamacho/mediator-go/internal/application/validation"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	users    user.Repository
	clock    shared.Clock
	validate *validator.Validate
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(users user.Repository, clock shared.Clock) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		users:    users,
		clock:    clock,
		validate: validation.New(),
	}
}

// RegisterUserHandlers binds every user command and query with its validators
//
// This method registers:
//   - CreateUserCommand → CreateUserHandler
//   - GetUserQuery → GetUserHandler
//   - ListUsersQuery → ListUsersHandler
func (r *HandlerRegistry) RegisterUserHandlers(b *mediator.Builder) {
	mediator.RegisterHandler[*commands.CreateUserCommand, uuid.UUID](b, commands.NewCreateUserHandler(r.users, r.clock))
	mediator.AddValidators[*commands.CreateUserCommand](b, commands.CreateUserValidators(r.validate, r.users)...)

	mediator.RegisterHandler[*queries.GetUserQuery, *queries.UserDTO](b, queries.NewGetUserHandler(r.users))
	mediator.AddValidators[*queries.GetUserQuery](b, queries.IDIsUUID(r.validate))

	mediator.RegisterHandler[*queries.ListUsersQuery, []*queries.UserDTO](b, queries.NewListUsersHandler(r.users))
}
