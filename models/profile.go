package models

import "time"

// Profile is the public identity of a user. Its ID equals the owning User's ID
// and is created during onboarding (register, or username setup after OAuth).
// Posts and likes require an existing profile.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	FullName  string    `gorm:"size:128" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
