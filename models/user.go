package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authentication account. Display data lives on Profile; a user
// without a profile is authenticated but not onboarded yet.
//
// Email is NULL for OAuth accounts whose provider exposes no address. The
// composite unique index admits one local account per email (provider is
// empty for those) while NULL emails never collide with each other.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        *string   `gorm:"size:255;uniqueIndex:idx_users_email_provider,priority:1" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Provider     string    `gorm:"size:32;uniqueIndex:idx_users_email_provider,priority:2" json:"provider"`
	ProviderID   string    `gorm:"size:255;index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
