package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
)

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository returns a gorm-backed services.DashboardStore.
func NewDashboardRepository(db *gorm.DB) services.DashboardStore {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CreateFolder(f *models.Folder) error {
	return r.db.Create(f).Error
}

func (r *dashboardRepository) GetFolder(id string) (models.Folder, bool, error) {
	var folder models.Folder
	err := r.db.Where("id = ?", id).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Folder{}, false, nil
	}
	if err != nil {
		return models.Folder{}, false, err
	}
	return folder, true, nil
}

func (r *dashboardRepository) DeleteFolder(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Folder{}).Error
}

func (r *dashboardRepository) ListFolders(ownerID string, parentID *string) ([]models.Folder, error) {
	q := r.db.Where("owner_id = ?", ownerID).Order("name ASC")
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var folders []models.Folder
	if err := q.Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *dashboardRepository) FolderHasChildren(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Folder{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.Model(&models.Image{}).Where("folder_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dashboardRepository) CreateImage(img *models.Image) error {
	return r.db.Create(img).Error
}

func (r *dashboardRepository) GetImage(id string) (models.Image, bool, error) {
	var img models.Image
	err := r.db.Where("id = ?", id).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Image{}, false, nil
	}
	if err != nil {
		return models.Image{}, false, err
	}
	return img, true, nil
}

func (r *dashboardRepository) DeleteImage(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Image{}).Error
}

func (r *dashboardRepository) ListImages(folderID string) ([]models.Image, error) {
	var images []models.Image
	err := r.db.Where("folder_id = ?", folderID).Order("created_at DESC").Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *dashboardRepository) SearchImages(ownerID, query string, limit int) ([]models.Image, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var images []models.Image
	err := r.db.Where("owner_id = ? AND LOWER(name) LIKE ?", ownerID, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}
