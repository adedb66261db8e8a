package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/utils"
)

// StatsController provides feed statistics such as counts and daily views.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the feed.
func (s *StatsController) GetStats(ctx *gin.Context) {
	db := s.db.WithContext(ctx.Request.Context())
	var userCount, postCount, commentCount, likeCount, viewsToday int64

	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := db.Model(&models.PostLike{}).Count(&likeCount).Error; err != nil {
		likeCount = 0
	}

	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.PostView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&viewsToday).Error; err != nil {
		viewsToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":    userCount,
		"post_count":    postCount,
		"comment_count": commentCount,
		"like_count":    likeCount,
		"views_today":   viewsToday,
	})
}

// GetPostStats returns views, likes and comments for a given post id.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	db := s.db.WithContext(ctx.Request.Context())

	var post models.Post
	if err := db.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Sugar.Errorw("load post for stats failed", "post_id", postID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post stats")
		return
	}

	var views, likes, comments int64
	if err := db.Model(&models.PostView{}).
		Where("post_id = ?", postID).
		Select("COALESCE(SUM(count),0)").
		Scan(&views).Error; err != nil {
		views = 0
	}
	if err := db.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likes).Error; err != nil {
		likes = 0
	}
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments).Error; err != nil {
		comments = 0
	}

	utils.Success(ctx, gin.H{
		"post_id":        postID,
		"views":          views,
		"like_count":     likes,
		"comments_count": comments,
	})
}
