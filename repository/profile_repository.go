package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a gorm-backed services.ProfileStore.
func NewProfileRepository(db *gorm.DB) services.ProfileStore {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreateProfile(p *models.Profile) error {
	if err := r.db.Create(p).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *profileRepository) GetProfile(id string) (models.Profile, bool, error) {
	var profile models.Profile
	err := r.db.Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, true, nil
}

func (r *profileRepository) GetProfileByUsername(username string) (models.Profile, bool, error) {
	var profile models.Profile
	err := r.db.Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, true, nil
}

func (r *profileRepository) ProfileExists(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Profile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
