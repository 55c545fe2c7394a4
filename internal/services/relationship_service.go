package services

import (
	"microblog/internal/models"
	"microblog/internal/repositories"

	"go.uber.org/zap"
)

// FollowStats counts both directions of a user's follow graph.
type FollowStats struct {
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
}

// RelationshipService manages the directed follow graph.
type RelationshipService struct {
	relationships repositories.RelationshipRepository
	users         repositories.UserRepository
	logger        *zap.Logger
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(relationships repositories.RelationshipRepository, users repositories.UserRepository, logger *zap.Logger) *RelationshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipService{
		relationships: relationships,
		users:         users,
		logger:        logger,
	}
}

// Follow makes followerID follow followedID. Following oneself is rejected and
// following twice is a no-op.
func (s *RelationshipService) Follow(followerID, followedID string) error {
	if followerID == followedID {
		return ErrCannotFollowSelf
	}
	if _, err := s.users.GetByID(followerID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(followedID); err != nil {
		return err
	}
	if err := s.relationships.Create(&models.Relationship{FollowerID: followerID, FollowedID: followedID}); err != nil {
		return err
	}
	s.logger.Debug("followed", zap.String("follower_id", followerID), zap.String("followed_id", followedID))
	return nil
}

// Unfollow removes the edge if it exists.
func (s *RelationshipService) Unfollow(followerID, followedID string) error {
	removed, err := s.relationships.Delete(followerID, followedID)
	if err != nil {
		return err
	}
	if removed {
		s.logger.Debug("unfollowed", zap.String("follower_id", followerID), zap.String("followed_id", followedID))
	}
	return nil
}

// IsFollowing reports whether followerID follows followedID.
func (s *RelationshipService) IsFollowing(followerID, followedID string) (bool, error) {
	return s.relationships.Exists(followerID, followedID)
}

// Following returns the users userID follows.
func (s *RelationshipService) Following(userID string) ([]models.User, error) {
	return s.relationships.Following(userID)
}

// Followers returns the users following userID.
func (s *RelationshipService) Followers(userID string) ([]models.User, error) {
	return s.relationships.Followers(userID)
}

// Stats returns the following and follower counts of userID.
func (s *RelationshipService) Stats(userID string) (FollowStats, error) {
	var stats FollowStats
	var err error
	if stats.Following, err = s.relationships.FollowingCount(userID); err != nil {
		return FollowStats{}, err
	}
	if stats.Followers, err = s.relationships.FollowersCount(userID); err != nil {
		return FollowStats{}, err
	}
	return stats, nil
}
