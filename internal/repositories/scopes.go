package repositories

import (
	"microblog/internal/models"

	"gorm.io/gorm"
)

// FeedScope restricts a micropost query to the posts of userID and of every user
// userID follows, newest first. The followed ids are resolved by a subquery so the
// whole feed is one statement.
func FeedScope(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		followingIDs := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Relationship{}).
			Select("followed_id").
			Where("follower_id = ?", userID)
		return db.Where("user_id IN (?) OR user_id = ?", followingIDs, userID).
			Order("created_at DESC").
			Order("id DESC")
	}
}

// Paginate applies the page window.
func Paginate(page models.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page = page.Normalize()
		return db.Offset(page.Offset()).Limit(page.PerPage)
	}
}
