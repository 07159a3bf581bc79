package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/config"
	"github.com/singhastra/microfeedx/controllers"
	"github.com/singhastra/microfeedx/middleware"
	"github.com/singhastra/microfeedx/repository"
	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, objects services.ObjectStorage) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	postRepo := repository.NewPostRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	profileService := services.NewProfileService(profileRepo)
	feedService := services.NewFeedService(feedRepo)
	likeService := services.NewLikeService(likeRepo, profileRepo)
	postService := services.NewPostService(postRepo, profileRepo)
	dashboardService := services.NewDashboardService(dashboardRepo, objects, profileRepo)

	authController := controllers.NewAuthController(userRepo, profileService)
	feedController := controllers.NewFeedController(feedService)
	postController := controllers.NewPostController(postService, likeService)
	profileController := controllers.NewProfileController(profileService)
	dashboardController := controllers.NewDashboardController(dashboardService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.POST("/username", middleware.AuthRequired(), authController.SetupUsername)

	// Feed is public; a bearer token only adds is_liked and filter=me.
	api.GET("/feed", middleware.AuthOptional(), feedController.GetFeed)
	api.GET("/profiles/:username", profileController.GetByUsername)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", postController.ToggleLike)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/folders", dashboardController.ListFolder)
	dashboard.POST("/folders", dashboardController.CreateFolder)
	dashboard.DELETE("/folders/:id", dashboardController.DeleteFolder)
	dashboard.GET("/folders/:id/path", dashboardController.FolderPath)
	dashboard.POST("/images", dashboardController.UploadImage)
	dashboard.DELETE("/images/:id", dashboardController.DeleteImage)
	dashboard.GET("/images/search", dashboardController.SearchImages)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
