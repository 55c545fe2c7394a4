package repositories

import (
	"errors"
	"fmt"

	"microblog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMicropostRepository is a GORM implementation of MicropostRepository.
type GORMMicropostRepository struct {
	db *gorm.DB
}

// NewGORMMicropostRepository creates a new instance of GORMMicropostRepository.
func NewGORMMicropostRepository(db *gorm.DB) *GORMMicropostRepository {
	return &GORMMicropostRepository{
		db: db,
	}
}

// Create creates a new micropost in the database.
func (r *GORMMicropostRepository) Create(post *models.Micropost) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create micropost: %w", err)
	}
	return nil
}

// GetByID retrieves a single micropost by its ID from the database.
func (r *GORMMicropostRepository) GetByID(id string) (*models.Micropost, error) {
	var post models.Micropost
	if err := r.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("micropost with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get micropost by ID %s: %w", id, err)
	}
	return &post, nil
}

// Delete deletes a micropost by its ID from the database.
func (r *GORMMicropostRepository) Delete(id string) error {
	res := r.db.Delete(&models.Micropost{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete micropost: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("micropost with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListByUser returns one page of the user's own posts, newest first.
func (r *GORMMicropostRepository) ListByUser(userID string, page models.Page) ([]models.Micropost, error) {
	var posts []models.Micropost
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Scopes(Paginate(page)).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list microposts of user %s: %w", userID, err)
	}
	return posts, nil
}

// Feed returns one page of the feed described by q.
func (r *GORMMicropostRepository) Feed(q models.FeedQuery) ([]models.Micropost, error) {
	var posts []models.Micropost
	if err := r.db.Scopes(FeedScope(q.UserID), Paginate(q.Page)).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to load feed of user %s: %w", q.UserID, err)
	}
	return posts, nil
}
