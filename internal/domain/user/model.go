package user

import (
	"time"

	"expense-tracker-go/internal/model"
)

type User struct {
	ID                  string     `gorm:"type:uuid;primaryKey"`
	Name                string     `gorm:"not null"`
	Email               string     `gorm:"uniqueIndex;not null"`
	PasswordHash        string     `gorm:"not null"`
	ResetToken          *string    `gorm:"type:text"`
	ResetTokenExpiresAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt           time.Time  `gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime"`
}

// Public strips credentials before the user leaves the service.
func (u User) Public() model.User {
	return model.User{ID: u.ID, Name: u.Name, Email: u.Email}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  model.User
}
