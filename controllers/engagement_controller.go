package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postfeed/utils"
)

var (
	likeCodes    = errorCodes{notFound: 40410, forbidden: 40310, invalid: 40040, internal: 50040}
	commentCodes = errorCodes{notFound: 40420, forbidden: 40320, invalid: 40041, internal: 50041}
)

// LikePost adds the caller to the post's liker set.
func (p *PostController) LikePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	uid, ok := callerID(ctx)
	if !ok {
		return
	}
	if err := p.engagement.Like(ctx.Request.Context(), uid, postID); err != nil {
		respondServiceError(ctx, err, likeCodes, "failed to like post")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Success(ctx, gin.H{"message": "post liked", "post_id": postID, "liked": true})
}

// UnlikePost removes the caller from the post's liker set.
func (p *PostController) UnlikePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	uid, ok := callerID(ctx)
	if !ok {
		return
	}
	if err := p.engagement.Unlike(ctx.Request.Context(), uid, postID); err != nil {
		respondServiceError(ctx, err, likeCodes, "failed to unlike post")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Success(ctx, gin.H{"message": "post unliked", "post_id": postID, "liked": false})
}

// ListComments returns a post's comments in creation order.
func (p *PostController) ListComments(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	comments, err := p.engagement.ListComments(ctx.Request.Context(), postID)
	if err != nil {
		respondServiceError(ctx, err, commentCodes, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// CreateComment allows authenticated users to comment on posts.
func (p *PostController) CreateComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}
	uid, ok := callerID(ctx)
	if !ok {
		return
	}

	comment, err := p.engagement.AddComment(ctx.Request.Context(), uid, postID, req.Content)
	if err != nil {
		respondServiceError(ctx, err, commentCodes, "failed to create comment")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Created(ctx, gin.H{"comment": comment})
}

// DeleteComment lets the author delete their comment under the given post.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid comment id")
		return
	}
	uid, ok := callerID(ctx)
	if !ok {
		return
	}
	if err := p.engagement.DeleteComment(ctx.Request.Context(), commentID, postID, uid); err != nil {
		respondServiceError(ctx, err, commentCodes, "failed to delete comment")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
