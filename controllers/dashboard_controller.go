package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// DashboardController manages a user's private image library.
type DashboardController struct {
	dashboard services.DashboardService
}

func NewDashboardController(dashboard services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// ListFolder returns the folders and images at one level of the tree. Without
// a parent query parameter the root level is listed.
func (d *DashboardController) ListFolder(ctx *gin.Context) {
	var folderID *string
	if raw := strings.TrimSpace(ctx.Query("parent")); raw != "" {
		folderID = &raw
	}
	listing, err := d.dashboard.ListFolder(viewerID(ctx), folderID)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, listing)
}

// CreateFolder creates a folder, optionally nested under a parent.
func (d *DashboardController) CreateFolder(ctx *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	folder, err := d.dashboard.CreateFolder(viewerID(ctx), req.Name, req.ParentID)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"folder": folder})
}

// DeleteFolder removes an empty folder.
func (d *DashboardController) DeleteFolder(ctx *gin.Context) {
	folderID := strings.TrimSpace(ctx.Param("id"))
	if folderID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "missing folder id")
		return
	}
	if err := d.dashboard.DeleteFolder(viewerID(ctx), folderID); err != nil {
		serviceError(ctx, err)
		return
	}
	utils.SuccessMessage(ctx, "folder deleted")
}

// FolderPath returns the breadcrumb chain from the root down to a folder.
func (d *DashboardController) FolderPath(ctx *gin.Context) {
	folderID := strings.TrimSpace(ctx.Param("id"))
	if folderID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "missing folder id")
		return
	}
	chain, err := d.dashboard.FolderPath(viewerID(ctx), folderID)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"path": chain})
}

// UploadImage stores a multipart image upload inside a folder.
func (d *DashboardController) UploadImage(ctx *gin.Context) {
	folderID := strings.TrimSpace(ctx.PostForm("folder_id"))
	if folderID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "missing folder_id")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "missing file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "unreadable file")
		return
	}
	defer file.Close()

	name := strings.TrimSpace(ctx.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}
	contentType := fileHeader.Header.Get("Content-Type")

	img, err := d.dashboard.UploadImage(viewerID(ctx), folderID, name, file, fileHeader.Size, contentType)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"image": img})
}

// DeleteImage removes an image row and its stored object.
func (d *DashboardController) DeleteImage(ctx *gin.Context) {
	imageID := strings.TrimSpace(ctx.Param("id"))
	if imageID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "missing image id")
		return
	}
	if err := d.dashboard.DeleteImage(viewerID(ctx), imageID); err != nil {
		serviceError(ctx, err)
		return
	}
	utils.SuccessMessage(ctx, "image deleted")
}

// SearchImages finds the viewer's images by name, across all folders.
func (d *DashboardController) SearchImages(ctx *gin.Context) {
	images, err := d.dashboard.SearchImages(viewerID(ctx), ctx.Query("q"))
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"images": images})
}
