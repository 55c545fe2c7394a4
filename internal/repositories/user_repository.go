package repositories

import (
	"time"

	"microblog/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	// GetByEmail matches case-insensitively; emails are stored lowercased.
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateRememberDigest(id string, digest *string) error
	UpdateActivationDigest(id string, digest *string) error
	UpdateResetDigest(id string, digest *string, sentAt *time.Time) error
	// UpdatePassword stores a new password digest and clears any pending reset.
	UpdatePassword(id string, passwordDigest string) error
	MarkActivated(id string, at time.Time) error
	// Delete removes the user together with its microposts and every
	// relationship in which it takes part.
	Delete(id string) error
}
