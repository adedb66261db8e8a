package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/postfeed/config"
	"github.com/cppla/postfeed/controllers"
	"github.com/cppla/postfeed/middleware"
	"github.com/cppla/postfeed/services"
	"github.com/cppla/postfeed/store"
	"github.com/cppla/postfeed/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
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
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		utils.Sugar.Warnw("gin access log disabled", "path", cfg.GinPath, "err", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postStore := store.NewGormStore(db)
	postController := controllers.NewPostController(
		services.NewPostQueryService(postStore),
		services.NewPostEditor(postStore),
		services.NewEngagementService(postStore),
	)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")
	api.GET("/stats", statsController.GetStats)

	posts := api.Group("/posts")
	posts.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	posts.GET("", postController.ListPosts)
	posts.GET("/recent", postController.RecentPosts)
	posts.GET("/infinite", postController.InfinitePosts)
	posts.GET("/trending", postController.TrendingPosts)
	posts.GET("/search", postController.SearchPosts)
	posts.GET("/media", postController.MediaPosts)
	posts.GET("/author/:authorId", postController.PostsByAuthor)
	posts.GET("/:id", middleware.PostViewRecorder(db), postController.GetPost)
	posts.GET("/:id/stats", statsController.GetPostStats)
	posts.POST("", postController.CreatePost)
	posts.PATCH("/:id", postController.UpdatePost)
	posts.DELETE("/:id", postController.DeletePost)

	posts.POST("/:id/like", postController.LikePost)
	posts.DELETE("/:id/like", postController.UnlikePost)
	posts.GET("/:id/comments", postController.ListComments)
	posts.POST("/:id/comments", postController.CreateComment)
	posts.DELETE("/:id/comments/:commentId", postController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
