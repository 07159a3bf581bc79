package services

import (
	"strings"
	"time"

	"github.com/singhastra/microfeedx/models"
)

// FeedFilter restricts the feed by authorship.
type FeedFilter string

const (
	// FilterAll returns every post.
	FilterAll FeedFilter = "all"
	// FilterMe returns only posts authored by the viewer.
	FilterMe FeedFilter = "me"
)

const (
	// DefaultFeedLimit is used when the caller does not specify a page size.
	DefaultFeedLimit = 10
	// MaxFeedLimit caps the page size regardless of what the caller asks for.
	MaxFeedLimit = 50
)

// FeedQuery carries pagination and filtering input for one feed fetch.
type FeedQuery struct {
	// Cursor is the id of the last post of the previous page, empty for the
	// first page.
	Cursor string
	// Search restricts results to posts whose content or author username
	// contains the text, case-insensitively.
	Search string
	// Limit is the page size; zero means DefaultFeedLimit.
	Limit int
	// Filter is FilterAll or FilterMe.
	Filter FeedFilter
}

// FeedCursor is the compound ordering key of a post. Ordering by
// (CreatedAt, ID) keeps pagination stable even when two posts share a
// timestamp.
type FeedCursor struct {
	CreatedAt time.Time
	ID        string
}

// FeedSelection is the store-level query derived from a FeedQuery.
type FeedSelection struct {
	// Before, when set, restricts results to posts strictly earlier than the
	// cursor key in (created_at, id) descending order.
	Before   *FeedCursor
	Search   string
	AuthorID string
	Limit    int
}

// FeedStore is the persistence contract for the feed.
type FeedStore interface {
	// CursorFor resolves a post id to its ordering key. ok is false when the
	// post no longer exists.
	CursorFor(postID string) (cursor FeedCursor, ok bool, err error)
	// ListPosts returns posts matching the selection ordered by
	// (created_at DESC, id DESC), author preloaded, at most Limit rows.
	ListPosts(sel FeedSelection) ([]models.Post, error)
	// LikeCounts returns like totals for the given post ids in one query.
	LikeCounts(postIDs []string) (map[string]int64, error)
	// LikedPostIDs returns which of the given posts the user has liked,
	// in one query.
	LikedPostIDs(userID string, postIDs []string) (map[string]bool, error)
}

// FeedAuthor is the public author snippet embedded in a feed item.
type FeedAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// FeedPost is one feed item annotated for the requesting viewer.
type FeedPost struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Author    FeedAuthor `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	Likes     int64      `json:"likes"`
	IsLiked   bool       `json:"is_liked"`
	IsAuthor  bool       `json:"is_author"`
}

// FeedPage is one page of the feed plus continuation state.
type FeedPage struct {
	Posts      []FeedPost `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// FeedService returns pages of posts in reverse chronological order.
type FeedService interface {
	// Fetch returns one page. viewerID may be empty for anonymous readers
	// unless the query filters by authorship.
	Fetch(viewerID string, q FeedQuery) (FeedPage, error)
}

type feedService struct {
	store FeedStore
}

func NewFeedService(store FeedStore) FeedService {
	return &feedService{store: store}
}

func (s *feedService) Fetch(viewerID string, q FeedQuery) (FeedPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	sel := FeedSelection{
		Search: strings.TrimSpace(q.Search),
		Limit:  limit + 1,
	}

	switch q.Filter {
	case "", FilterAll:
	case FilterMe:
		if viewerID == "" {
			return FeedPage{}, ErrAuthenticationRequired
		}
		sel.AuthorID = viewerID
	default:
		return FeedPage{}, invalid("unknown filter %q", q.Filter)
	}

	if q.Cursor != "" {
		cursor, ok, err := s.store.CursorFor(q.Cursor)
		if err != nil {
			return FeedPage{}, unavailable(err)
		}
		// A cursor whose post was deleted between pages is ignored and
		// pagination restarts from the top.
		if ok {
			sel.Before = &cursor
		}
	}

	posts, err := s.store.ListPosts(sel)
	if err != nil {
		return FeedPage{}, unavailable(err)
	}

	page := FeedPage{Posts: []FeedPost{}}
	if len(posts) > limit {
		posts = posts[:limit]
		page.HasMore = true
		page.NextCursor = posts[len(posts)-1].ID
	}
	if len(posts) == 0 {
		return page, nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	counts, err := s.store.LikeCounts(ids)
	if err != nil {
		return FeedPage{}, unavailable(err)
	}

	liked := map[string]bool{}
	if viewerID != "" {
		liked, err = s.store.LikedPostIDs(viewerID, ids)
		if err != nil {
			return FeedPage{}, unavailable(err)
		}
	}

	for _, p := range posts {
		name := p.Author.FullName
		if name == "" {
			name = p.Author.Username
		}
		page.Posts = append(page.Posts, FeedPost{
			ID:      p.ID,
			Content: p.Content,
			Author: FeedAuthor{
				ID:       p.AuthorID,
				Username: p.Author.Username,
				Name:     name,
			},
			CreatedAt: p.CreatedAt,
			Likes:     counts[p.ID],
			IsLiked:   liked[p.ID],
			IsAuthor:  viewerID != "" && p.AuthorID == viewerID,
		})
	}
	return page, nil
}
