package queries

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/validation"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

// GetUserQuery represents a query to get a user by id
type GetUserQuery struct {
	mediator.Returns[*UserDTO]
	ID string `json:"id"`
}

// NewGetUserQuery builds the query from a raw id
func NewGetUserQuery(id string) *GetUserQuery {
	return &GetUserQuery{ID: strings.ToLower(strings.TrimSpace(id))}
}

// IDIsUUID rejects ids that are not UUIDs
func IDIsUUID(v *validator.Validate) mediator.Validator {
	return validation.Field(v, "id", func(q *GetUserQuery) any { return q.ID }, "required,uuid", "must be a valid UUID")
}

// GetUserHandler handles the GetUser query
type GetUserHandler struct {
	users user.Repository
}

// NewGetUserHandler creates a new GetUserHandler
func NewGetUserHandler(users user.Repository) *GetUserHandler {
	return &GetUserHandler{users: users}
}

// Handle executes the GetUser query
func (h *GetUserHandler) Handle(ctx context.Context, query *GetUserQuery) (*UserDTO, error) {
	id, err := uuid.Parse(query.ID)
	if err != nil {
		return nil, shared.NewValidationError("id", "must be a valid UUID")
	}

	u, err := h.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return toDTO(u), nil
}
