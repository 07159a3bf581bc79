package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/singhastra/microfeedx/models"
)

// fakePostStore keeps posts in a map.
type fakePostStore struct {
	posts map[string]models.Post
	next  int
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: map[string]models.Post{}}
}

func (f *fakePostStore) CreatePost(p *models.Post) error {
	f.next++
	if p.ID == "" {
		p.ID = fmt.Sprintf("post-%03d", f.next)
	}
	f.posts[p.ID] = *p
	return nil
}

func (f *fakePostStore) GetPost(id string) (models.Post, bool, error) {
	p, ok := f.posts[id]
	return p, ok, nil
}

func (f *fakePostStore) DeletePost(id string) error {
	delete(f.posts, id)
	return nil
}

func TestCreatePostTrimsAndStores(t *testing.T) {
	store := newFakePostStore()
	svc := NewPostService(store, newProfileSet("u1"))

	post, err := svc.Create("u1", "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Content)
	assert.Equal(t, "u1", post.AuthorID)
	assert.Len(t, store.posts, 1)
}

func TestCreatePostStripsHTML(t *testing.T) {
	svc := NewPostService(newFakePostStore(), newProfileSet("u1"))

	post, err := svc.Create("u1", `hi <script>alert("x")</script>there`)
	require.NoError(t, err)
	assert.NotContains(t, post.Content, "<script>")
	assert.Contains(t, post.Content, "hi")
}

func TestCreatePostLengthBoundary(t *testing.T) {
	svc := NewPostService(newFakePostStore(), newProfileSet("u1"))

	// Multibyte runes count as single characters.
	atLimit := strings.Repeat("世", MaxPostLength)
	_, err := svc.Create("u1", atLimit)
	assert.NoError(t, err)

	_, err = svc.Create("u1", atLimit+"界")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePostRejectsEmpty(t *testing.T) {
	svc := NewPostService(newFakePostStore(), newProfileSet("u1"))

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := svc.Create("u1", content)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestCreatePostGates(t *testing.T) {
	svc := NewPostService(newFakePostStore(), newProfileSet("u1"))

	_, err := svc.Create("", "hello")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = svc.Create("no-profile", "hello")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeletePostOwnership(t *testing.T) {
	store := newFakePostStore()
	svc := NewPostService(store, newProfileSet("u1", "u2"))

	post, err := svc.Create("u1", "mine")
	require.NoError(t, err)

	err = svc.Delete("u2", post.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete("u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete("u1", post.ID)
	require.NoError(t, err)
	assert.Empty(t, store.posts)
}
