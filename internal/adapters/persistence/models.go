package persistence

import (
	"time"
)

// UserModel represents the users table
type UserModel struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	FirstName string    `gorm:"column:first_name;not null;size:100"`
	LastName  string    `gorm:"column:last_name;not null;size:100"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:idx_users_email;size:320"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (UserModel) TableName() string {
	return "users"
}
