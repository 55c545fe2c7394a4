package services_test

import (
	"time"

	"microblog/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRememberDigest(id string, digest *string) error {
	args := m.Called(id, digest)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateActivationDigest(id string, digest *string) error {
	args := m.Called(id, digest)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(id string, passwordDigest string) error {
	args := m.Called(id, passwordDigest)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateResetDigest(id string, digest *string, sentAt *time.Time) error {
	args := m.Called(id, digest, sentAt)
	return args.Error(0)
}

func (m *MockUserRepository) MarkActivated(id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockMicropostRepository is a mock implementation of repositories.MicropostRepository
type MockMicropostRepository struct {
	mock.Mock
}

func (m *MockMicropostRepository) Create(post *models.Micropost) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockMicropostRepository) GetByID(id string) (*models.Micropost, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Micropost), args.Error(1)
}

func (m *MockMicropostRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockMicropostRepository) ListByUser(userID string, page models.Page) ([]models.Micropost, error) {
	args := m.Called(userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Micropost), args.Error(1)
}

func (m *MockMicropostRepository) Feed(q models.FeedQuery) ([]models.Micropost, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Micropost), args.Error(1)
}

// MockMailer is a mock implementation of services.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendActivationEmail(user *models.User) {
	m.Called(user)
}

func (m *MockMailer) SendPasswordResetEmail(user *models.User) {
	m.Called(user)
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
