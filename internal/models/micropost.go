package models

import "time"

// Micropost is a short status message owned by a user.
type Micropost struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;index:idx_microposts_user_created,priority:1"`
	Content   string    `json:"content" gorm:"type:varchar(140);not null" validate:"required,max=140"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_microposts_user_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`
}
