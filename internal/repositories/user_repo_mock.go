package repositories

import (
	"fmt"
	"time"

	"microblog/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	store *MockStore
}

// NewMockUserRepository creates a user repository backed by a fresh MockStore.
func NewMockUserRepository() *MockUserRepository {
	return NewMockStore().Users()
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if emailKey(existing.Email) == emailKey(user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.ID = newID(user.ID)
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

// GetByID returns a user by its ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetByEmail returns a user by email, ignoring case.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if emailKey(user.Email) == emailKey(email) {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// Update replaces an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	for id, other := range s.users {
		if id != user.ID && emailKey(other.Email) == emailKey(user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

// UpdateRememberDigest sets or clears the remember digest.
func (r *MockUserRepository) UpdateRememberDigest(id string, digest *string) error {
	return r.modify(id, func(u *models.User) {
		u.RememberDigest = digest
	})
}

// UpdateActivationDigest replaces the activation digest.
func (r *MockUserRepository) UpdateActivationDigest(id string, digest *string) error {
	return r.modify(id, func(u *models.User) {
		u.ActivationDigest = digest
	})
}

// UpdatePassword stores a new password digest and clears the pending reset.
func (r *MockUserRepository) UpdatePassword(id string, passwordDigest string) error {
	return r.modify(id, func(u *models.User) {
		u.PasswordDigest = passwordDigest
		u.ResetDigest = nil
		u.ResetSentAt = nil
	})
}

// UpdateResetDigest writes the reset digest and timestamp together.
func (r *MockUserRepository) UpdateResetDigest(id string, digest *string, sentAt *time.Time) error {
	return r.modify(id, func(u *models.User) {
		u.ResetDigest = digest
		u.ResetSentAt = sentAt
	})
}

// MarkActivated flips the activation flag once.
func (r *MockUserRepository) MarkActivated(id string, at time.Time) error {
	return r.modify(id, func(u *models.User) {
		if u.Activated {
			return
		}
		u.Activated = true
		u.ActivatedAt = &at
	})
}

// Delete removes the user, its microposts and its relationships.
func (r *MockUserRepository) Delete(id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	for postID, post := range s.microposts {
		if post.UserID == id {
			delete(s.microposts, postID)
		}
	}
	for key, rel := range s.relationships {
		if rel.FollowerID == id || rel.FollowedID == id {
			delete(s.relationships, key)
		}
	}
	delete(s.users, id)
	return nil
}

func (r *MockUserRepository) modify(id string, fn func(*models.User)) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	fn(&user)
	user.UpdatedAt = s.now()
	s.users[id] = user
	return nil
}
