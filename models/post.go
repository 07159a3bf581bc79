package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a short text entry on the feed. CreatedAt together with ID forms the
// feed ordering key and is never updated after insertion.
type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"size:36;index;not null" json:"author_id"`
	Content   string    `gorm:"size:512;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Author Profile `gorm:"foreignKey:AuthorID;references:ID" json:"author"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
