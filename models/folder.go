package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder organizes dashboard images into a tree. A nil ParentID means the
// folder sits at the owner's root.
type Folder struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"size:36;index;not null" json:"owner_id"`
	ParentID  *string   `gorm:"size:36;index" json:"parent_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
