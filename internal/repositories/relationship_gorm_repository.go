package repositories

import (
	"fmt"

	"microblog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRelationshipRepository is a GORM implementation of RelationshipRepository.
type GORMRelationshipRepository struct {
	db *gorm.DB
}

// NewGORMRelationshipRepository creates a new instance of GORMRelationshipRepository.
func NewGORMRelationshipRepository(db *gorm.DB) *GORMRelationshipRepository {
	return &GORMRelationshipRepository{
		db: db,
	}
}

// Create inserts the follow edge, ignoring a conflicting pair.
func (r *GORMRelationshipRepository) Create(rel *models.Relationship) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
		DoNothing: true,
	}).Create(rel).Error
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	return nil
}

// Delete removes the follow edge between the two users.
func (r *GORMRelationshipRepository) Delete(followerID, followedID string) (bool, error) {
	res := r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Relationship{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete relationship: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether followerID follows followedID.
func (r *GORMRelationshipRepository) Exists(followerID, followedID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check relationship: %w", err)
	}
	return count > 0, nil
}

// Following returns the users followed by userID.
func (r *GORMRelationshipRepository) Following(userID string) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN relationships ON relationships.followed_id = users.id").
		Where("relationships.follower_id = ?", userID).
		Order("relationships.created_at").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list following of user %s: %w", userID, err)
	}
	return users, nil
}

// Followers returns the users following userID.
func (r *GORMRelationshipRepository) Followers(userID string) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN relationships ON relationships.follower_id = users.id").
		Where("relationships.followed_id = ?", userID).
		Order("relationships.created_at").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers of user %s: %w", userID, err)
	}
	return users, nil
}

// FollowingCount counts the users followed by userID.
func (r *GORMRelationshipRepository) FollowingCount(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Relationship{}).Where("follower_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count following of user %s: %w", userID, err)
	}
	return count, nil
}

// FollowersCount counts the users following userID.
func (r *GORMRelationshipRepository) FollowersCount(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Relationship{}).Where("followed_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers of user %s: %w", userID, err)
	}
	return count, nil
}
