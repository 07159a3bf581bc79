package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// FeedController serves paginated feed reads.
type FeedController struct {
	feed services.FeedService
}

func NewFeedController(feed services.FeedService) *FeedController {
	return &FeedController{feed: feed}
}

// GetFeed returns one cursor page of posts. Works without a session; a viewer
// is required only for filter=me and for like/author annotation.
func (f *FeedController) GetFeed(ctx *gin.Context) {
	q := services.FeedQuery{
		Cursor: strings.TrimSpace(ctx.Query("cursor")),
		Search: ctx.Query("q"),
		Filter: services.FeedFilter(strings.TrimSpace(ctx.Query("filter"))),
	}
	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40011, "limit must be a positive integer")
			return
		}
		q.Limit = limit
	}

	page, err := f.feed.Fetch(viewerID(ctx), q)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, page)
}
