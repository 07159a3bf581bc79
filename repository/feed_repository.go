package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
)

type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository returns a gorm-backed services.FeedStore.
func NewFeedRepository(db *gorm.DB) services.FeedStore {
	return &feedRepository{db: db}
}

func (r *feedRepository) CursorFor(postID string) (services.FeedCursor, bool, error) {
	var post models.Post
	err := r.db.Select("id", "created_at").Where("id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.FeedCursor{}, false, nil
	}
	if err != nil {
		return services.FeedCursor{}, false, err
	}
	return services.FeedCursor{CreatedAt: post.CreatedAt, ID: post.ID}, true, nil
}

func (r *feedRepository) ListPosts(sel services.FeedSelection) ([]models.Post, error) {
	q := r.db.Model(&models.Post{}).
		Preload("Author").
		Order("posts.created_at DESC, posts.id DESC")

	if sel.AuthorID != "" {
		q = q.Where("posts.author_id = ?", sel.AuthorID)
	}
	if sel.Search != "" {
		pattern := "%" + strings.ToLower(sel.Search) + "%"
		q = q.Joins("JOIN profiles ON profiles.id = posts.author_id").
			Where("LOWER(posts.content) LIKE ? OR LOWER(profiles.username) LIKE ? OR LOWER(profiles.full_name) LIKE ?",
				pattern, pattern, pattern)
	}
	if sel.Before != nil {
		// Compound cursor predicate matching the (created_at, id) descending
		// order; ties on created_at stay stable across pages.
		q = q.Where("posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?)",
			sel.Before.CreatedAt, sel.Before.CreatedAt, sel.Before.ID)
	}
	if sel.Limit > 0 {
		q = q.Limit(sel.Limit)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *feedRepository) LikeCounts(postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PostID string
		Total  int64
	}
	err := r.db.Model(&models.Like{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

func (r *feedRepository) LikedPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []string
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
