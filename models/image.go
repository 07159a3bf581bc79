package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is a dashboard upload stored in object storage. StorageKey is the S3
// object key; URL is the public address returned to clients.
type Image struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID    string    `gorm:"size:36;index;not null" json:"owner_id"`
	FolderID   string    `gorm:"size:36;index;not null" json:"folder_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	StorageKey string    `gorm:"size:512;not null" json:"-"`
	URL        string    `gorm:"size:1024;not null" json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
