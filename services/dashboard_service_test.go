package services

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/singhastra/microfeedx/models"
)

type fakeDashboardStore struct {
	folders map[string]models.Folder
	images  map[string]models.Image
	next    int

	imageInsertErr error
}

func newFakeDashboardStore() *fakeDashboardStore {
	return &fakeDashboardStore{folders: map[string]models.Folder{}, images: map[string]models.Image{}}
}

func (f *fakeDashboardStore) id(prefix string) string {
	f.next++
	return fmt.Sprintf("%s-%03d", prefix, f.next)
}

func (f *fakeDashboardStore) CreateFolder(folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = f.id("folder")
	}
	f.folders[folder.ID] = *folder
	return nil
}

func (f *fakeDashboardStore) GetFolder(id string) (models.Folder, bool, error) {
	folder, ok := f.folders[id]
	return folder, ok, nil
}

func (f *fakeDashboardStore) DeleteFolder(id string) error {
	delete(f.folders, id)
	return nil
}

func (f *fakeDashboardStore) ListFolders(ownerID string, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, folder := range f.folders {
		if folder.OwnerID != ownerID {
			continue
		}
		switch {
		case parentID == nil && folder.ParentID == nil:
			out = append(out, folder)
		case parentID != nil && folder.ParentID != nil && *folder.ParentID == *parentID:
			out = append(out, folder)
		}
	}
	return out, nil
}

func (f *fakeDashboardStore) FolderHasChildren(id string) (bool, error) {
	for _, folder := range f.folders {
		if folder.ParentID != nil && *folder.ParentID == id {
			return true, nil
		}
	}
	for _, img := range f.images {
		if img.FolderID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDashboardStore) CreateImage(img *models.Image) error {
	if f.imageInsertErr != nil {
		return f.imageInsertErr
	}
	if img.ID == "" {
		img.ID = f.id("img")
	}
	f.images[img.ID] = *img
	return nil
}

func (f *fakeDashboardStore) GetImage(id string) (models.Image, bool, error) {
	img, ok := f.images[id]
	return img, ok, nil
}

func (f *fakeDashboardStore) DeleteImage(id string) error {
	delete(f.images, id)
	return nil
}

func (f *fakeDashboardStore) ListImages(folderID string) ([]models.Image, error) {
	var out []models.Image
	for _, img := range f.images {
		if img.FolderID == folderID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeDashboardStore) SearchImages(ownerID, query string, limit int) ([]models.Image, error) {
	var out []models.Image
	for _, img := range f.images {
		if img.OwnerID == ownerID && strings.Contains(strings.ToLower(img.Name), strings.ToLower(query)) {
			out = append(out, img)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeObjects records uploads and deletions in memory.
type fakeObjects struct {
	stored  map[string]string // key -> contentType
	deleted []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{stored: map[string]string{}}
}

func (f *fakeObjects) Upload(key string, body io.Reader, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.stored[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjects) Delete(key string) error {
	delete(f.stored, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newDashboard(t *testing.T) (DashboardService, *fakeDashboardStore, *fakeObjects) {
	t.Helper()
	store := newFakeDashboardStore()
	objects := newFakeObjects()
	return NewDashboardService(store, objects, newProfileSet("u1", "u2")), store, objects
}

func TestCreateFolderValidation(t *testing.T) {
	svc, _, _ := newDashboard(t)

	_, err := svc.CreateFolder("u1", "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateFolder("u1", strings.Repeat("a", MaxFolderNameLength+1), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateFolder("", "photos", nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = svc.CreateFolder("no-profile", "photos", nil)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestCreateFolderParentOwnership(t *testing.T) {
	svc, _, _ := newDashboard(t)

	parent, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)

	// Another user cannot nest under it, and learns nothing beyond "not found".
	_, err = svc.CreateFolder("u2", "sneaky", &parent.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	child, err := svc.CreateFolder("u1", "2026", &parent.ID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestDeleteFolderRequiresEmpty(t *testing.T) {
	svc, _, _ := newDashboard(t)

	parent, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)
	child, err := svc.CreateFolder("u1", "2026", &parent.ID)
	require.NoError(t, err)

	err = svc.DeleteFolder("u1", parent.ID)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteFolder("u1", child.ID))
	require.NoError(t, svc.DeleteFolder("u1", parent.ID))
}

func TestFolderPathBreadcrumbs(t *testing.T) {
	svc, _, _ := newDashboard(t)

	root, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)
	year, err := svc.CreateFolder("u1", "2026", &root.ID)
	require.NoError(t, err)
	month, err := svc.CreateFolder("u1", "march", &year.ID)
	require.NoError(t, err)

	chain, err := svc.FolderPath("u1", month.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, []string{"photos", "2026", "march"}, []string{chain[0].Name, chain[1].Name, chain[2].Name})

	_, err = svc.FolderPath("u2", month.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImage(t *testing.T) {
	svc, store, objects := newDashboard(t)

	folder, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)

	img, err := svc.UploadImage("u1", folder.ID, "cat.png", strings.NewReader("pngbytes"), 8, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", img.Name)
	assert.True(t, strings.HasPrefix(img.StorageKey, "images/u1/"))
	assert.True(t, strings.HasSuffix(img.StorageKey, ".png"))
	assert.Equal(t, "https://cdn.test/"+img.StorageKey, img.URL)
	assert.Contains(t, objects.stored, img.StorageKey)
	assert.Len(t, store.images, 1)
}

func TestUploadImageValidation(t *testing.T) {
	svc, _, _ := newDashboard(t)

	folder, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)

	_, err = svc.UploadImage("u1", folder.ID, "doc.pdf", strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UploadImage("u1", folder.ID, "big.png", strings.NewReader("x"), MaxImageSize+1, "image/png")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UploadImage("u1", "missing-folder", "cat.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImageCleansUpOrphanedObject(t *testing.T) {
	svc, store, objects := newDashboard(t)

	folder, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)

	store.imageInsertErr = fmt.Errorf("insert failed")
	_, err = svc.UploadImage("u1", folder.ID, "cat.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, objects.stored, "the uploaded object is removed when the row insert fails")
	assert.Len(t, objects.deleted, 1)
}

func TestDeleteImageOwnership(t *testing.T) {
	svc, store, objects := newDashboard(t)

	folder, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)
	img, err := svc.UploadImage("u1", folder.ID, "cat.png", strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)

	err = svc.DeleteImage("u2", img.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteImage("u1", img.ID))
	assert.Empty(t, store.images)
	assert.Empty(t, objects.stored)
}

func TestSearchImages(t *testing.T) {
	svc, _, _ := newDashboard(t)

	folder, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)
	_, err = svc.UploadImage("u1", folder.ID, "Sunset Beach.png", strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	_, err = svc.UploadImage("u1", folder.ID, "invoice.png", strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)

	images, err := svc.SearchImages("u1", "sunset")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "Sunset Beach.png", images[0].Name)

	images, err = svc.SearchImages("u1", "   ")
	require.NoError(t, err)
	assert.Empty(t, images)

	images, err = svc.SearchImages("u2", "sunset")
	require.NoError(t, err)
	assert.Empty(t, images, "search never crosses owners")
}

func TestListFolderLevels(t *testing.T) {
	svc, _, _ := newDashboard(t)

	root, err := svc.CreateFolder("u1", "photos", nil)
	require.NoError(t, err)
	_, err = svc.CreateFolder("u1", "2026", &root.ID)
	require.NoError(t, err)
	_, err = svc.UploadImage("u1", root.ID, "cat.png", strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)

	top, err := svc.ListFolder("u1", nil)
	require.NoError(t, err)
	require.Len(t, top.Folders, 1)
	assert.Empty(t, top.Images, "root level lists folders only")

	inside, err := svc.ListFolder("u1", &root.ID)
	require.NoError(t, err)
	assert.Len(t, inside.Folders, 1)
	assert.Len(t, inside.Images, 1)
}
