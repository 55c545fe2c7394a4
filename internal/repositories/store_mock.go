package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"microblog/internal/models"

	"github.com/google/uuid"
)

// MockStore is an in-memory backend shared by the Mock*Repository types, so that
// deleting a user can cascade to its posts and relationships under one lock.
type MockStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	microposts    map[string]models.Micropost
	relationships map[string]models.Relationship
	now           func() time.Time
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:         make(map[string]models.User),
		microposts:    make(map[string]models.Micropost),
		relationships: make(map[string]models.Relationship),
		now:           time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *MockStore) Users() *MockUserRepository {
	return &MockUserRepository{store: s}
}

// Relationships returns the relationship repository view of the store.
func (s *MockStore) Relationships() *MockRelationshipRepository {
	return &MockRelationshipRepository{store: s}
}

// Microposts returns the micropost repository view of the store.
func (s *MockStore) Microposts() *MockMicropostRepository {
	return &MockMicropostRepository{store: s}
}

func relationshipKey(followerID, followedID string) string {
	return followerID + "->" + followedID
}

func sortNewestFirst(posts []models.Micropost) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

func paginate(posts []models.Micropost, page models.Page) []models.Micropost {
	page = page.Normalize()
	start := page.Offset()
	if start < 0 || start >= len(posts) {
		return []models.Micropost{}
	}
	end := start + page.PerPage
	if end < start || end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func emailKey(email string) string {
	return strings.ToLower(email)
}
