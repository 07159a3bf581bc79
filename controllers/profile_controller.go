package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// ProfileController serves public profile reads.
type ProfileController struct {
	profiles services.ProfileService
}

func NewProfileController(profiles services.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

// GetByUsername returns a public profile. Profiles are immutable after setup,
// so responses are cached in redis.
func (p *ProfileController) GetByUsername(ctx *gin.Context) {
	username := strings.ToLower(strings.TrimSpace(ctx.Param("username")))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "missing username")
		return
	}

	cacheKey := utils.ProfileCacheKey(username)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	profile, err := p.profiles.GetByUsername(username)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	payload := gin.H{"profile": profile}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}
