package services

import (
	"context"

	"github.com/cppla/postfeed/models"
)

// PostOrder selects the ordering of a post listing.
type PostOrder int

const (
	// OrderStorage leaves ordering to the store's natural order (id ascending).
	OrderStorage PostOrder = iota
	// OrderNewest sorts by created_at descending, id descending.
	OrderNewest
	// OrderIDDesc sorts by id descending; used for keyset pagination.
	OrderIDDesc
	// OrderTrending sorts by like count, then comment count, then id, all descending.
	OrderTrending
	// OrderRelevance sorts by full-text relevance of the caption against Search.
	OrderRelevance
)

// PostQuery is the structured form of a post listing request.
type PostQuery struct {
	BeforeID uint // only ids strictly below this value; 0 disables
	AuthorID uint // 0 disables
	HasMedia bool
	Search   string
	Order    PostOrder
	Limit    int // 0 means unbounded
	// NewestCommentsFirst orders embedded comments by created_at descending
	// instead of creation order.
	NewestCommentsFirst bool
}

// PostPatch carries a partial post update. A nil field is left untouched;
// ClearMedia removes the media reference.
type PostPatch struct {
	Caption    *string
	Media      *string
	ClearMedia bool
}

// PostStore is the persistence gateway used by the post services. Lookups
// of missing rows return gorm.ErrRecordNotFound.
type PostStore interface {
	FindPosts(ctx context.Context, q PostQuery) ([]models.PostDetail, error)
	FindPostDetail(ctx context.Context, id uint, newestCommentsFirst bool) (*models.PostDetail, error)
	FindPost(ctx context.Context, id uint) (*models.Post, error)
	FindUser(ctx context.Context, id uint) (*models.User, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, id uint, patch PostPatch) error
	DeletePost(ctx context.Context, id uint) error

	AddLike(ctx context.Context, postID, userID uint) error
	RemoveLike(ctx context.Context, postID, userID uint) error

	FindComment(ctx context.Context, id uint) (*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) (*models.CommentDetail, error)
	DeleteComment(ctx context.Context, id uint) error
	ListComments(ctx context.Context, postID uint) ([]models.CommentDetail, error)
}
