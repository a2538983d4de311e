package queries

import (
	"time"

	"github.com/andrescamacho/mediator-go/internal/domain/user"
)

// UserDTO is the read model returned by user queries
type UserDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:        u.ID().String(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Email:     u.Email(),
		CreatedAt: u.CreatedAt(),
	}
}
