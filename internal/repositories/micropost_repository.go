package repositories

import (
	"microblog/internal/models"
)

// MicropostRepository defines the interface for micropost data access.
type MicropostRepository interface {
	Create(post *models.Micropost) error
	GetByID(id string) (*models.Micropost, error)
	Delete(id string) error
	ListByUser(userID string, page models.Page) ([]models.Micropost, error)
	// Feed returns the posts selected by q, newest first.
	Feed(q models.FeedQuery) ([]models.Micropost, error)
}
