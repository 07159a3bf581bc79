package services

import "github.com/singhastra/microfeedx/models"

// UserStore is the persistence contract for auth accounts.
type UserStore interface {
	// CreateUser inserts the account, returning ErrDuplicate when the
	// (email, provider) unique index rejects it. The index is the
	// authoritative guard; callers must not rely on a prior lookup.
	CreateUser(u *models.User) error
	// GetUserByEmail finds the local password account for an email.
	GetUserByEmail(email string) (models.User, bool, error)
	// GetUserByProvider finds the account owned by an OAuth identity.
	GetUserByProvider(provider, providerID string) (models.User, bool, error)
	GetUser(id string) (models.User, bool, error)
	// UpdateUserEmail refreshes the address reported by an OAuth provider.
	UpdateUserEmail(id string, email *string) error
	// DeleteUser removes an account. Registration rolls the account back
	// with it when profile creation fails.
	DeleteUser(id string) error
}
