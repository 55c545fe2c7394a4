package repositories

import (
	"sort"

	"microblog/internal/models"
)

// MockRelationshipRepository is an in-memory implementation of RelationshipRepository.
type MockRelationshipRepository struct {
	store *MockStore
}

// Create adds the edge unless the pair already exists.
func (r *MockRelationshipRepository) Create(rel *models.Relationship) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := relationshipKey(rel.FollowerID, rel.FollowedID)
	if _, ok := s.relationships[key]; ok {
		return nil
	}
	rel.ID = newID(rel.ID)
	now := s.now()
	rel.CreatedAt, rel.UpdatedAt = now, now
	s.relationships[key] = *rel
	return nil
}

// Delete removes the edge if present.
func (r *MockRelationshipRepository) Delete(followerID, followedID string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := relationshipKey(followerID, followedID)
	if _, ok := s.relationships[key]; !ok {
		return false, nil
	}
	delete(s.relationships, key)
	return true, nil
}

// Exists reports whether the edge is present.
func (r *MockRelationshipRepository) Exists(followerID, followedID string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.relationships[relationshipKey(followerID, followedID)]
	return ok, nil
}

// Following returns the users followed by userID.
func (r *MockRelationshipRepository) Following(userID string) ([]models.User, error) {
	return r.collect(func(rel models.Relationship) (string, bool) {
		return rel.FollowedID, rel.FollowerID == userID
	})
}

// Followers returns the users following userID.
func (r *MockRelationshipRepository) Followers(userID string) ([]models.User, error) {
	return r.collect(func(rel models.Relationship) (string, bool) {
		return rel.FollowerID, rel.FollowedID == userID
	})
}

// FollowingCount counts the users followed by userID.
func (r *MockRelationshipRepository) FollowingCount(userID string) (int64, error) {
	users, err := r.Following(userID)
	return int64(len(users)), err
}

// FollowersCount counts the users following userID.
func (r *MockRelationshipRepository) FollowersCount(userID string) (int64, error) {
	users, err := r.Followers(userID)
	return int64(len(users)), err
}

func (r *MockRelationshipRepository) collect(match func(models.Relationship) (string, bool)) ([]models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rels := make([]models.Relationship, 0)
	for _, rel := range s.relationships {
		if _, ok := match(rel); ok {
			rels = append(rels, rel)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].CreatedAt.Before(rels[j].CreatedAt) })

	users := make([]models.User, 0, len(rels))
	for _, rel := range rels {
		id, _ := match(rel)
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}
