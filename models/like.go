package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like records that a user liked a post. The composite unique index keeps the
// relation a set: at most one row per (user, post) pair, which the toggle
// algorithm relies on under concurrent requests.
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_likes_user_post,priority:1" json:"user_id"`
	PostID    string    `gorm:"size:36;not null;index;uniqueIndex:idx_likes_user_post,priority:2" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
