package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ListUsersQuery represents a query for one page of users, oldest first
type ListUsersQuery struct {
	mediator.Returns[[]*UserDTO]
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListUsersQuery clamps the page into range: a non-positive limit means
// DefaultPageSize and limits above MaxPageSize are capped.
func NewListUsersQuery(limit, offset int) *ListUsersQuery {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return &ListUsersQuery{Limit: limit, Offset: offset}
}

// ListUsersHandler handles the ListUsers query
type ListUsersHandler struct {
	users user.Repository
}

// NewListUsersHandler creates a new ListUsersHandler
func NewListUsersHandler(users user.Repository) *ListUsersHandler {
	return &ListUsersHandler{users: users}
}

// Handle executes the ListUsers query
func (h *ListUsersHandler) Handle(ctx context.Context, query *ListUsersQuery) ([]*UserDTO, error) {
	users, err := h.users.List(ctx, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]*UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toDTO(u))
	}
	return dtos, nil
}
