package services

import (
	"strings"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// MicropostService handles business logic related to microposts and feeds.
type MicropostService struct {
	repo     repositories.MicropostRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewMicropostService creates a new MicropostService. A nil clock uses time.Now.
func NewMicropostService(repo repositories.MicropostRepository, clock func() time.Time) *MicropostService {
	if clock == nil {
		clock = time.Now
	}
	return &MicropostService{
		repo:     repo,
		validate: newValidator(),
		now:      clock,
	}
}

// CreateMicropost validates content and stores it as a post of userID.
func (s *MicropostService) CreateMicropost(userID, content string) (*models.Micropost, error) {
	post := &models.Micropost{
		UserID:    userID,
		Content:   strings.TrimSpace(content),
		CreatedAt: s.now(),
	}
	if verr := validateStruct(s.validate, post); !verr.Empty() {
		return nil, verr
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeleteMicropost deletes a post owned by userID.
func (s *MicropostService) DeleteMicropost(userID, postID string) error {
	post, err := s.repo.GetByID(postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrMicropostForbidden
	}
	return s.repo.Delete(postID)
}

// GetMicropost retrieves a single micropost by its ID.
func (s *MicropostService) GetMicropost(id string) (*models.Micropost, error) {
	return s.repo.GetByID(id)
}

// UserMicroposts returns one page of a user's own posts, newest first.
func (s *MicropostService) UserMicroposts(userID string, page models.Page) ([]models.Micropost, error) {
	return s.repo.ListByUser(userID, page)
}

// FeedQuery describes the feed of userID for the given page.
func (s *MicropostService) FeedQuery(userID string, page models.Page) models.FeedQuery {
	return models.FeedQuery{UserID: userID, Page: page.Normalize()}
}

// Feed returns one page of the posts of userID and everyone userID follows,
// newest first.
func (s *MicropostService) Feed(userID string, page models.Page) ([]models.Micropost, error) {
	return s.repo.Feed(s.FeedQuery(userID, page))
}
