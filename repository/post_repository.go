package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a gorm-backed services.PostStore.
func NewPostRepository(db *gorm.DB) services.PostStore {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(p *models.Post) error {
	return r.db.Create(p).Error
}

func (r *postRepository) GetPost(id string) (models.Post, bool, error) {
	var post models.Post
	err := r.db.Preload("Author").Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Post{}, false, nil
	}
	if err != nil {
		return models.Post{}, false, err
	}
	return post, true, nil
}

func (r *postRepository) DeletePost(id string) error {
	// Likes reference the post only by id; drop them with the post so counts
	// never include rows for dead posts.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
}
