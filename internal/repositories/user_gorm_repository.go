package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"microblog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Update saves every column of an existing user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(user).Select("*").Omit("created_at").Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// UpdateRememberDigest sets or clears the remember digest.
func (r *GORMUserRepository) UpdateRememberDigest(id string, digest *string) error {
	return r.updateColumns(id, map[string]any{"remember_digest": digest})
}

// UpdateActivationDigest replaces the activation digest.
func (r *GORMUserRepository) UpdateActivationDigest(id string, digest *string) error {
	return r.updateColumns(id, map[string]any{"activation_digest": digest})
}

// UpdatePassword stores a new password digest and clears the pending reset.
func (r *GORMUserRepository) UpdatePassword(id string, passwordDigest string) error {
	return r.updateColumns(id, map[string]any{
		"password_digest": passwordDigest,
		"reset_digest":    nil,
		"reset_sent_at":   nil,
	})
}

// UpdateResetDigest writes the reset digest and its timestamp in one statement.
func (r *GORMUserRepository) UpdateResetDigest(id string, digest *string, sentAt *time.Time) error {
	return r.updateColumns(id, map[string]any{"reset_digest": digest, "reset_sent_at": sentAt})
}

// MarkActivated flips the activation flag. Already activated users are left untouched.
func (r *GORMUserRepository) MarkActivated(id string, at time.Time) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND activated = ?", id, false).
		Updates(map[string]any{"activated": true, "activated_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to activate user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a user and its dependent rows in a single transaction.
func (r *GORMUserRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Micropost{}).Error; err != nil {
			return fmt.Errorf("failed to delete microposts of user %s: %w", id, err)
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Relationship{}).Error; err != nil {
			return fmt.Errorf("failed to delete relationships of user %s: %w", id, err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *GORMUserRepository) updateColumns(id string, columns map[string]any) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
