package services

import "errors"

// LikeStore is the persistence contract for likes.
type LikeStore interface {
	// Transact runs fn against a store view whose writes commit or roll back
	// together.
	Transact(fn func(tx LikeStore) error) error
	// DeleteLike removes the (user, post) like row if present and reports how
	// many rows were affected.
	DeleteLike(userID, postID string) (int64, error)
	// InsertLike adds a like row, returning ErrDuplicate when the unique
	// (user, post) index rejects it.
	InsertLike(userID, postID string) error
	// CountLikes returns the number of like rows referencing the post.
	CountLikes(postID string) (int64, error)
	// PostExists reports whether the post is present.
	PostExists(postID string) (bool, error)
}

// LikeResult is the authoritative state after a toggle.
type LikeResult struct {
	Likes   int64 `json:"likes"`
	IsLiked bool  `json:"is_liked"`
}

// LikeService flips a viewer's like on a post.
type LikeService interface {
	Toggle(viewerID, postID string) (LikeResult, error)
}

type likeService struct {
	likes    LikeStore
	profiles ProfileStore
}

func NewLikeService(likes LikeStore, profiles ProfileStore) LikeService {
	return &likeService{likes: likes, profiles: profiles}
}

// Toggle deletes the like row first and inserts only when nothing was deleted.
// Skipping the usual existence check removes the window where a double-submit
// reads stale state: repeated calls oscillate deterministically, and when two
// concurrent requests from the same user both reach the insert, the unique
// index lets one through and the other treats the conflict as the same
// outcome. Delete and insert run in one transaction.
func (s *likeService) Toggle(viewerID, postID string) (LikeResult, error) {
	if viewerID == "" {
		return LikeResult{}, ErrAuthenticationRequired
	}
	ok, err := s.profiles.ProfileExists(viewerID)
	if err != nil {
		return LikeResult{}, unavailable(err)
	}
	if !ok {
		return LikeResult{}, ErrProfileNotFound
	}

	exists, err := s.likes.PostExists(postID)
	if err != nil {
		return LikeResult{}, unavailable(err)
	}
	if !exists {
		return LikeResult{}, ErrNotFound
	}

	var liked bool
	err = s.likes.Transact(func(tx LikeStore) error {
		deleted, err := tx.DeleteLike(viewerID, postID)
		if err != nil {
			return err
		}
		if deleted > 0 {
			liked = false
			return nil
		}
		if err := tx.InsertLike(viewerID, postID); err != nil {
			if errors.Is(err, ErrDuplicate) {
				// A concurrent request inserted first; the end state is
				// identical, so report success.
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return LikeResult{}, unavailable(err)
	}

	count, err := s.likes.CountLikes(postID)
	if err != nil {
		return LikeResult{}, unavailable(err)
	}
	return LikeResult{Likes: count, IsLiked: liked}, nil
}
