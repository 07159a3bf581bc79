package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/singhastra/microfeedx/models"
)

// ProfileStore is the persistence contract for profiles.
type ProfileStore interface {
	CreateProfile(p *models.Profile) error
	GetProfile(id string) (models.Profile, bool, error)
	GetProfileByUsername(username string) (models.Profile, bool, error)
	ProfileExists(id string) (bool, error)
}

// ProfileService manages the public identity attached to a user account.
type ProfileService interface {
	Create(userID, username, fullName string) (models.Profile, error)
	Get(userID string) (models.Profile, error)
	GetByUsername(username string) (models.Profile, error)
}

type profileService struct {
	store ProfileStore
}

func NewProfileService(store ProfileStore) ProfileService {
	return &profileService{store: store}
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateUsername reports whether a username is acceptable: 3-20 characters,
// lowercase letters, digits and underscores only.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return invalid("username must be between 3 and 20 characters")
	}
	if !usernamePattern.MatchString(username) {
		return invalid("username may only contain lowercase letters, digits and underscores")
	}
	return nil
}

func (s *profileService) Create(userID, username, fullName string) (models.Profile, error) {
	if userID == "" {
		return models.Profile{}, ErrAuthenticationRequired
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if err := ValidateUsername(username); err != nil {
		return models.Profile{}, err
	}

	if _, ok, err := s.store.GetProfileByUsername(username); err != nil {
		return models.Profile{}, unavailable(err)
	} else if ok {
		return models.Profile{}, invalid("username is already taken")
	}

	profile := models.Profile{
		ID:       userID,
		Username: username,
		FullName: strings.TrimSpace(fullName),
	}
	if err := s.store.CreateProfile(&profile); err != nil {
		// Concurrent setup with the same name loses to the unique index.
		if errors.Is(err, ErrDuplicate) {
			return models.Profile{}, invalid("username is already taken")
		}
		return models.Profile{}, unavailable(err)
	}
	return profile, nil
}

func (s *profileService) Get(userID string) (models.Profile, error) {
	if userID == "" {
		return models.Profile{}, ErrAuthenticationRequired
	}
	profile, ok, err := s.store.GetProfile(userID)
	if err != nil {
		return models.Profile{}, unavailable(err)
	}
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (s *profileService) GetByUsername(username string) (models.Profile, error) {
	profile, ok, err := s.store.GetProfileByUsername(strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return models.Profile{}, unavailable(err)
	}
	if !ok {
		return models.Profile{}, ErrNotFound
	}
	return profile, nil
}
