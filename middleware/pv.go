package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/utils"
)

// PostViewRecorder counts successful detail reads of a post per day. Mount it
// on the GET /posts/:id route only.
func PostViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.Writer.Status() != http.StatusOK {
			return
		}
		postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || postID == 0 {
			return
		}

		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Atomic upsert to avoid duplicate key errors under concurrency
		err = db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("post_views.count + 1"), "updated_at": time.Now()}),
		}).Create(&models.PostView{Date: localMidnight, PostID: uint(postID), Count: 1}).Error
		if err != nil {
			utils.Sugar.Warnw("record post view failed", "post_id", postID, "err", err)
		}
	}
}
