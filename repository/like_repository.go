package repository

import (
	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a gorm-backed services.LikeStore.
func NewLikeRepository(db *gorm.DB) services.LikeStore {
	return &likeRepository{db: db}
}

func (r *likeRepository) Transact(fn func(tx services.LikeStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&likeRepository{db: tx})
	})
}

func (r *likeRepository) DeleteLike(userID, postID string) (int64, error) {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

func (r *likeRepository) InsertLike(userID, postID string) error {
	like := models.Like{UserID: userID, PostID: postID}
	if err := r.db.Create(&like).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *likeRepository) CountLikes(postID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *likeRepository) PostExists(postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error
	return count > 0, err
}
