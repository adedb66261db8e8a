package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/postfeed/services"
	"github.com/cppla/postfeed/utils"
)

const (
	cacheKeyRecent   = utils.CachePostsPrefix + "recent"
	cacheKeyTrending = utils.CachePostsPrefix + "trending"
	cacheKeyDetail   = utils.CachePostsPrefix + "detail:"
)

var (
	listCodes   = errorCodes{notFound: 40400, forbidden: 40300, invalid: 40020, internal: 50020}
	detailCodes = errorCodes{notFound: 40401, forbidden: 40300, invalid: 40021, internal: 50021}
	editCodes   = errorCodes{notFound: 40402, forbidden: 40301, invalid: 40022, internal: 50022}
)

// PostController serves post listings, lookups and edits.
type PostController struct {
	queries    *services.PostQueryService
	editor     *services.PostEditor
	engagement *services.EngagementService
}

// NewPostController creates a new PostController instance.
func NewPostController(queries *services.PostQueryService, editor *services.PostEditor, engagement *services.EngagementService) *PostController {
	return &PostController{queries: queries, editor: editor, engagement: engagement}
}

// ListPosts returns every post with author, likers and comments.
func (p *PostController) ListPosts(ctx *gin.Context) {
	posts, err := p.queries.ListAll(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// RecentPosts returns the newest posts.
func (p *PostController) RecentPosts(ctx *gin.Context) {
	if utils.RespondCached(ctx, cacheKeyRecent) {
		return
	}
	posts, err := p.queries.Recent(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to list recent posts")
		return
	}
	payload := gin.H{"items": posts}
	utils.CacheSuccess(cacheKeyRecent, payload)
	utils.Success(ctx, payload)
}

// InfinitePosts returns one keyset page: ?cursor=<id>&limit=<n>.
func (p *PostController) InfinitePosts(ctx *gin.Context) {
	cursor, ok := parseCursor(ctx.Query("cursor"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "cursor must be a positive integer")
		return
	}
	limit, ok := parseLimit(ctx.Query("limit"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "limit must be between 1 and "+strconv.Itoa(services.MaxPageSize))
		return
	}

	page, err := p.queries.Infinite(ctx.Request.Context(), cursor, limit)
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to load feed page")
		return
	}
	utils.Success(ctx, page)
}

// TrendingPosts returns the most liked posts.
func (p *PostController) TrendingPosts(ctx *gin.Context) {
	if utils.RespondCached(ctx, cacheKeyTrending) {
		return
	}
	posts, err := p.queries.Trending(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to list trending posts")
		return
	}
	payload := gin.H{"items": posts}
	utils.CacheSuccess(cacheKeyTrending, payload)
	utils.Success(ctx, payload)
}

// SearchPosts runs a full-text search: ?s=<text>.
func (p *PostController) SearchPosts(ctx *gin.Context) {
	posts, err := p.queries.Search(ctx.Request.Context(), ctx.Query("s"))
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to search posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// PostsByAuthor returns an author's newest posts.
func (p *PostController) PostsByAuthor(ctx *gin.Context) {
	authorID, ok := parseID(ctx.Param("authorId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid author id")
		return
	}
	posts, err := p.queries.ByAuthor(ctx.Request.Context(), authorID)
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to list author posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// MediaPosts returns posts that carry media.
func (p *PostController) MediaPosts(ctx *gin.Context) {
	posts, err := p.queries.WithMedia(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err, listCodes, "failed to list media posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// GetPost returns a single post with comments.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	cacheKey := cacheKeyDetail + strconv.FormatUint(uint64(postID), 10)
	if utils.RespondCached(ctx, cacheKey) {
		return
	}

	post, err := p.queries.Get(ctx.Request.Context(), postID)
	if err != nil {
		respondServiceError(ctx, err, detailCodes, "failed to load post")
		return
	}
	payload := gin.H{"post": post}
	utils.CacheSuccess(cacheKey, payload)
	utils.Success(ctx, payload)
}

// CreatePost creates a post authored by the caller.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Caption  string  `json:"caption" binding:"required"`
		AuthorID uint    `json:"author_id"`
		Media    *string `json:"media"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid request payload")
		return
	}
	uid, ok := callerID(ctx)
	if !ok {
		return
	}

	post, err := p.editor.Create(ctx.Request.Context(), uid, services.CreatePostInput{
		Caption:  req.Caption,
		AuthorID: req.AuthorID,
		Media:    req.Media,
	})
	if err != nil {
		respondServiceError(ctx, err, editCodes, "failed to create post")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Created(ctx, gin.H{"post": post})
}

// UpdatePost applies a partial update. "media": null clears the media reference.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	var req struct {
		Caption *string         `json:"caption"`
		Media   json.RawMessage `json:"media"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40028, "invalid request payload")
		return
	}

	patch := services.PostPatch{Caption: req.Caption}
	switch {
	case len(req.Media) == 0:
	case string(req.Media) == "null":
		patch.ClearMedia = true
	default:
		var media string
		if err := json.Unmarshal(req.Media, &media); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40029, "media must be a string or null")
			return
		}
		patch.Media = &media
	}

	uid, ok := callerID(ctx)
	if !ok {
		return
	}
	post, err := p.editor.Update(ctx.Request.Context(), uid, postID, patch)
	if err != nil {
		respondServiceError(ctx, err, editCodes, "failed to update post")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes the caller's post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}
	uid, ok := callerID(ctx)
	if !ok {
		return
	}
	if err := p.editor.Delete(ctx.Request.Context(), uid, postID); err != nil {
		respondServiceError(ctx, err, editCodes, "failed to delete post")
		return
	}
	utils.InvalidateByPrefix(utils.CachePostsPrefix)
	utils.Success(ctx, gin.H{"message": "post deleted"})
}
