// Package controllers contains the gin handlers for the HTTP API. Handlers
// translate requests into service calls and service errors into the uniform
// JSON envelope; all business rules live one layer down.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/singhastra/microfeedx/middleware"
	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// viewerID returns the authenticated user's id from the gin context, empty
// when the request carries no session.
func viewerID(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}

// serviceError maps service sentinels onto the response envelope. Profile
// absence gets its own code so clients route to username setup instead of
// login.
func serviceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "authentication required")
	case errors.Is(err, services.ErrProfileNotFound):
		utils.Error(ctx, http.StatusForbidden, 40320, "profile not found")
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40310, "forbidden")
	case errors.Is(err, services.ErrUnavailable):
		utils.Sugar.Errorf("backend unavailable: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "service temporarily unavailable")
	default:
		utils.Sugar.Errorf("unhandled service error: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
