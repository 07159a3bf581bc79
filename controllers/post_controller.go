package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// PostController manages the post lifecycle and like toggling.
type PostController struct {
	posts services.PostService
	likes services.LikeService
}

func NewPostController(posts services.PostService, likes services.LikeService) *PostController {
	return &PostController{posts: posts, likes: likes}
}

// CreatePost creates a post for the authenticated user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post, err := p.posts.Create(viewerID(ctx), req.Content)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post owned by the authenticated user.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID := strings.TrimSpace(ctx.Param("id"))
	if postID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "missing post id")
		return
	}
	if err := p.posts.Delete(viewerID(ctx), postID); err != nil {
		serviceError(ctx, err)
		return
	}
	utils.SuccessMessage(ctx, "post deleted")
}

// ToggleLike flips the viewer's like on a post and returns the authoritative
// count.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	postID := strings.TrimSpace(ctx.Param("id"))
	if postID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "missing post id")
		return
	}
	result, err := p.likes.Toggle(viewerID(ctx), postID)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}
