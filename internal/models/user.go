package models

import "time"

// TokenKind names one of the digest-bearing token attributes of a User.
type TokenKind string

const (
	RememberToken   TokenKind = "remember"
	ActivationToken TokenKind = "activation"
	ResetToken      TokenKind = "reset"
)

// User represents an account of the microblog.
type User struct {
	ID               string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string     `json:"name" gorm:"type:varchar(50);not null"`
	Email            string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordDigest   string     `json:"-" gorm:"type:varchar(255);not null"`
	RememberDigest   *string    `json:"-" gorm:"type:varchar(255)"`
	ActivationDigest *string    `json:"-" gorm:"type:varchar(255)"`
	Activated        bool       `json:"activated" gorm:"not null;default:false"`
	ActivatedAt      *time.Time `json:"activated_at,omitempty"`
	ResetDigest      *string    `json:"-" gorm:"type:varchar(255)"`
	ResetSentAt      *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Raw tokens are held in memory for the current request only.
	RememberToken   string `json:"-" gorm:"-"`
	ActivationToken string `json:"-" gorm:"-"`
	ResetToken      string `json:"-" gorm:"-"`
}

// Digest returns the stored digest for kind, or nil if none is set.
func (u *User) Digest(kind TokenKind) *string {
	switch kind {
	case RememberToken:
		return u.RememberDigest
	case ActivationToken:
		return u.ActivationDigest
	case ResetToken:
		return u.ResetDigest
	}
	return nil
}
