package services

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/singhastra/microfeedx/models"
)

const (
	// MaxFolderNameLength bounds folder names.
	MaxFolderNameLength = 100
	// MaxImageSize bounds dashboard uploads (10 MB).
	MaxImageSize = 10 << 20
	// maxFolderDepth guards the breadcrumb walk against corrupted parent
	// chains.
	maxFolderDepth = 64
)

// DashboardStore is the persistence contract for folders and images.
type DashboardStore interface {
	CreateFolder(f *models.Folder) error
	GetFolder(id string) (models.Folder, bool, error)
	DeleteFolder(id string) error
	ListFolders(ownerID string, parentID *string) ([]models.Folder, error)
	FolderHasChildren(id string) (bool, error)

	CreateImage(img *models.Image) error
	GetImage(id string) (models.Image, bool, error)
	DeleteImage(id string) error
	ListImages(folderID string) ([]models.Image, error)
	SearchImages(ownerID, query string, limit int) ([]models.Image, error)
}

// ObjectStorage stores image blobs; the S3 client implements it.
type ObjectStorage interface {
	Upload(key string, body io.Reader, contentType string) (url string, err error)
	Delete(key string) error
}

// FolderListing is the contents of one folder level.
type FolderListing struct {
	Folders []models.Folder `json:"folders"`
	Images  []models.Image  `json:"images"`
}

// DashboardService organizes a user's images into nested folders.
type DashboardService interface {
	CreateFolder(ownerID, name string, parentID *string) (models.Folder, error)
	DeleteFolder(ownerID, folderID string) error
	ListFolder(ownerID string, folderID *string) (FolderListing, error)
	// FolderPath returns the breadcrumb chain from the root to the folder.
	FolderPath(ownerID, folderID string) ([]models.Folder, error)
	UploadImage(ownerID, folderID, name string, body io.Reader, size int64, contentType string) (models.Image, error)
	DeleteImage(ownerID, imageID string) error
	SearchImages(ownerID, query string) ([]models.Image, error)
}

type dashboardService struct {
	store    DashboardStore
	objects  ObjectStorage
	profiles ProfileStore
}

func NewDashboardService(store DashboardStore, objects ObjectStorage, profiles ProfileStore) DashboardService {
	return &dashboardService{store: store, objects: objects, profiles: profiles}
}

func (s *dashboardService) requireProfile(ownerID string) error {
	if ownerID == "" {
		return ErrAuthenticationRequired
	}
	ok, err := s.profiles.ProfileExists(ownerID)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return ErrProfileNotFound
	}
	return nil
}

// ownedFolder loads a folder and checks ownership. Folders of other users are
// reported as missing rather than forbidden to avoid leaking their existence.
func (s *dashboardService) ownedFolder(ownerID, folderID string) (models.Folder, error) {
	folder, ok, err := s.store.GetFolder(folderID)
	if err != nil {
		return models.Folder{}, unavailable(err)
	}
	if !ok || folder.OwnerID != ownerID {
		return models.Folder{}, ErrNotFound
	}
	return folder, nil
}

func (s *dashboardService) CreateFolder(ownerID, name string, parentID *string) (models.Folder, error) {
	if err := s.requireProfile(ownerID); err != nil {
		return models.Folder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, invalid("folder name cannot be empty")
	}
	if len(name) > MaxFolderNameLength {
		return models.Folder{}, invalid("folder name cannot exceed %d characters", MaxFolderNameLength)
	}
	if parentID != nil {
		if _, err := s.ownedFolder(ownerID, *parentID); err != nil {
			return models.Folder{}, err
		}
	}
	folder := models.Folder{OwnerID: ownerID, ParentID: parentID, Name: name}
	if err := s.store.CreateFolder(&folder); err != nil {
		return models.Folder{}, unavailable(err)
	}
	return folder, nil
}

func (s *dashboardService) DeleteFolder(ownerID, folderID string) error {
	if err := s.requireProfile(ownerID); err != nil {
		return err
	}
	if _, err := s.ownedFolder(ownerID, folderID); err != nil {
		return err
	}
	hasChildren, err := s.store.FolderHasChildren(folderID)
	if err != nil {
		return unavailable(err)
	}
	if hasChildren {
		return invalid("folder is not empty")
	}
	if err := s.store.DeleteFolder(folderID); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *dashboardService) ListFolder(ownerID string, folderID *string) (FolderListing, error) {
	if err := s.requireProfile(ownerID); err != nil {
		return FolderListing{}, err
	}
	listing := FolderListing{Folders: []models.Folder{}, Images: []models.Image{}}
	if folderID != nil {
		if _, err := s.ownedFolder(ownerID, *folderID); err != nil {
			return FolderListing{}, err
		}
	}
	folders, err := s.store.ListFolders(ownerID, folderID)
	if err != nil {
		return FolderListing{}, unavailable(err)
	}
	listing.Folders = folders
	if folderID != nil {
		images, err := s.store.ListImages(*folderID)
		if err != nil {
			return FolderListing{}, unavailable(err)
		}
		listing.Images = images
	}
	return listing, nil
}

func (s *dashboardService) FolderPath(ownerID, folderID string) ([]models.Folder, error) {
	if err := s.requireProfile(ownerID); err != nil {
		return nil, err
	}
	var chain []models.Folder
	seen := map[string]bool{}
	id := folderID
	for depth := 0; depth < maxFolderDepth; depth++ {
		if seen[id] {
			return nil, unavailable(fmt.Errorf("folder parent cycle at %s", id))
		}
		seen[id] = true
		folder, err := s.ownedFolder(ownerID, id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, folder)
		if folder.ParentID == nil {
			break
		}
		id = *folder.ParentID
	}
	// Walked leaf to root; breadcrumbs read the other way.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (s *dashboardService) UploadImage(ownerID, folderID, name string, body io.Reader, size int64, contentType string) (models.Image, error) {
	if err := s.requireProfile(ownerID); err != nil {
		return models.Image{}, err
	}
	if _, err := s.ownedFolder(ownerID, folderID); err != nil {
		return models.Image{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Image{}, invalid("image name cannot be empty")
	}
	if size <= 0 || size > MaxImageSize {
		return models.Image{}, invalid("image must be between 1 byte and %d MB", MaxImageSize>>20)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.Image{}, invalid("only image uploads are allowed")
	}

	key := fmt.Sprintf("images/%s/%s%s", ownerID, uuid.NewString(), path.Ext(name))
	url, err := s.objects.Upload(key, io.LimitReader(body, MaxImageSize), contentType)
	if err != nil {
		return models.Image{}, unavailable(err)
	}

	img := models.Image{
		OwnerID:    ownerID,
		FolderID:   folderID,
		Name:       name,
		StorageKey: key,
		URL:        url,
	}
	if err := s.store.CreateImage(&img); err != nil {
		// The row is the source of truth; drop the orphaned object.
		_ = s.objects.Delete(key)
		return models.Image{}, unavailable(err)
	}
	return img, nil
}

func (s *dashboardService) DeleteImage(ownerID, imageID string) error {
	if err := s.requireProfile(ownerID); err != nil {
		return err
	}
	img, ok, err := s.store.GetImage(imageID)
	if err != nil {
		return unavailable(err)
	}
	if !ok || img.OwnerID != ownerID {
		return ErrNotFound
	}
	if err := s.store.DeleteImage(imageID); err != nil {
		return unavailable(err)
	}
	if err := s.objects.Delete(img.StorageKey); err != nil {
		// Row is gone; a leaked object is recoverable by a storage sweep.
		return nil
	}
	return nil
}

func (s *dashboardService) SearchImages(ownerID, query string) ([]models.Image, error) {
	if err := s.requireProfile(ownerID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Image{}, nil
	}
	images, err := s.store.SearchImages(ownerID, query, 50)
	if err != nil {
		return nil, unavailable(err)
	}
	return images, nil
}
