package models

import "time"

// Relationship is a directed follow edge: Follower follows Followed.
type Relationship struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID string    `json:"follower_id" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_relationships_pair"`
	FollowedID string    `json:"followed_id" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_relationships_pair"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
