package services

import (
	"strings"
	"unicode/utf8"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/utils"
)

// MaxPostLength is the longest allowed post content in characters, counted
// after trimming.
const MaxPostLength = 280

// PostStore is the persistence contract for posts.
type PostStore interface {
	CreatePost(p *models.Post) error
	GetPost(id string) (models.Post, bool, error)
	DeletePost(id string) error
}

// PostService covers the post lifecycle outside of feed reads.
type PostService interface {
	Create(viewerID, content string) (models.Post, error)
	Delete(viewerID, postID string) error
}

type postService struct {
	posts    PostStore
	profiles ProfileStore
}

func NewPostService(posts PostStore, profiles ProfileStore) PostService {
	return &postService{posts: posts, profiles: profiles}
}

func (s *postService) Create(viewerID, content string) (models.Post, error) {
	if viewerID == "" {
		return models.Post{}, ErrAuthenticationRequired
	}

	content = strings.TrimSpace(utils.Sanitize(content))
	if content == "" {
		return models.Post{}, invalid("post content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return models.Post{}, invalid("post content cannot exceed %d characters", MaxPostLength)
	}

	ok, err := s.profiles.ProfileExists(viewerID)
	if err != nil {
		return models.Post{}, unavailable(err)
	}
	if !ok {
		return models.Post{}, ErrProfileNotFound
	}

	post := models.Post{AuthorID: viewerID, Content: content}
	if err := s.posts.CreatePost(&post); err != nil {
		return models.Post{}, unavailable(err)
	}
	return post, nil
}

func (s *postService) Delete(viewerID, postID string) error {
	if viewerID == "" {
		return ErrAuthenticationRequired
	}
	post, ok, err := s.posts.GetPost(postID)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return ErrNotFound
	}
	if post.AuthorID != viewerID {
		return ErrForbidden
	}
	if err := s.posts.DeletePost(postID); err != nil {
		return unavailable(err)
	}
	return nil
}
