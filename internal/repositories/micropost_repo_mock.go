package repositories

import (
	"fmt"

	"microblog/internal/models"
)

// MockMicropostRepository is an in-memory implementation of MicropostRepository.
type MockMicropostRepository struct {
	store *MockStore
}

// Create adds a new micropost. A zero CreatedAt is set from the store clock.
func (r *MockMicropostRepository) Create(post *models.Micropost) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = newID(post.ID)
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}
	post.UpdatedAt = post.CreatedAt
	s.microposts[post.ID] = *post
	return nil
}

// GetByID returns a micropost by its ID.
func (r *MockMicropostRepository) GetByID(id string) (*models.Micropost, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.microposts[id]
	if !ok {
		return nil, fmt.Errorf("micropost with ID %s: %w", id, ErrNotFound)
	}
	return &post, nil
}

// Delete removes a micropost by its ID.
func (r *MockMicropostRepository) Delete(id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.microposts[id]; !ok {
		return fmt.Errorf("micropost with ID %s: %w", id, ErrNotFound)
	}
	delete(s.microposts, id)
	return nil
}

// ListByUser returns one page of the user's own posts, newest first.
func (r *MockMicropostRepository) ListByUser(userID string, page models.Page) ([]models.Micropost, error) {
	return r.filter(func(post models.Micropost) bool { return post.UserID == userID }, page), nil
}

// Feed applies the same owner filter as FeedScope: the user plus everyone it
// follows. Both are read under one lock so the result is a single snapshot.
func (r *MockMicropostRepository) Feed(q models.FeedQuery) ([]models.Micropost, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := map[string]bool{q.UserID: true}
	for _, rel := range s.relationships {
		if rel.FollowerID == q.UserID {
			owners[rel.FollowedID] = true
		}
	}
	return r.collect(func(post models.Micropost) bool { return owners[post.UserID] }, q.Page), nil
}

func (r *MockMicropostRepository) filter(keep func(models.Micropost) bool, page models.Page) []models.Micropost {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.collect(keep, page)
}

// collect must be called with the store lock held.
func (r *MockMicropostRepository) collect(keep func(models.Micropost) bool, page models.Page) []models.Micropost {
	posts := make([]models.Micropost, 0)
	for _, post := range r.store.microposts {
		if keep(post) {
			posts = append(posts, post)
		}
	}
	sortNewestFirst(posts)
	return paginate(posts, page)
}
