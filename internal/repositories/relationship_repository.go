package repositories

import (
	"microblog/internal/models"
)

// RelationshipRepository defines the interface for follow-graph data access.
type RelationshipRepository interface {
	// Create stores the edge; an existing (follower, followed) pair is left as is.
	Create(rel *models.Relationship) error
	// Delete removes the edge if present and reports whether a row was removed.
	Delete(followerID, followedID string) (bool, error)
	Exists(followerID, followedID string) (bool, error)
	Following(userID string) ([]models.User, error)
	Followers(userID string) ([]models.User, error)
	FollowingCount(userID string) (int64, error)
	FollowersCount(userID string) (int64, error)
}
