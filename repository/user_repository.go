package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm-backed services.UserStore.
func NewUserRepository(db *gorm.DB) services.UserStore {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(u *models.User) error {
	if err := r.db.Create(u).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *userRepository) GetUserByEmail(email string) (models.User, bool, error) {
	var user models.User
	err := r.db.Where("email = ? AND provider = ''", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (r *userRepository) GetUserByProvider(provider, providerID string) (models.User, bool, error) {
	var user models.User
	err := r.db.Where("provider = ? AND provider_id = ?", provider, providerID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (r *userRepository) GetUser(id string) (models.User, bool, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (r *userRepository) UpdateUserEmail(id string, email *string) error {
	err := r.db.Model(&models.User{}).Where("id = ?", id).Update("email", email).Error
	return translateDuplicate(err)
}

func (r *userRepository) DeleteUser(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.User{}).Error
}
