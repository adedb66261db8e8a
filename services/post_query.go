package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/postfeed/models"
)

const (
	RecentLimit     = 20
	TrendingLimit   = 3
	ByAuthorLimit   = 20
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxSearchLength = 200
)

// PostPage is one page of the infinite feed. NextCursor is nil at the end of the stream.
type PostPage struct {
	Data       []models.PostDetail `json:"data"`
	NextCursor *uint               `json:"next_cursor"`
}

// PostQueryService turns each post listing into a single structured store query.
type PostQueryService struct {
	store PostStore
}

// NewPostQueryService creates a PostQueryService backed by store.
func NewPostQueryService(store PostStore) *PostQueryService {
	return &PostQueryService{store: store}
}

// ListAll returns every post. Callers must not assume recency order.
func (s *PostQueryService) ListAll(ctx context.Context) ([]models.PostDetail, error) {
	return s.store.FindPosts(ctx, PostQuery{Order: OrderStorage})
}

// Recent returns the newest posts.
func (s *PostQueryService) Recent(ctx context.Context) ([]models.PostDetail, error) {
	return s.store.FindPosts(ctx, PostQuery{Order: OrderNewest, Limit: RecentLimit})
}

// Infinite returns the page of posts older than cursor. A zero cursor starts
// from the newest post. One extra row is fetched to detect whether another
// page exists.
func (s *PostQueryService) Infinite(ctx context.Context, cursor uint, limit int) (*PostPage, error) {
	if limit <= 0 || limit > MaxPageSize {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxPageSize, ErrInvalid)
	}

	posts, err := s.store.FindPosts(ctx, PostQuery{
		BeforeID: cursor,
		Order:    OrderIDDesc,
		Limit:    limit + 1,
	})
	if err != nil {
		return nil, err
	}

	page := &PostPage{Data: posts}
	if len(posts) > limit {
		page.Data = posts[:limit]
		next := page.Data[limit-1].ID
		page.NextCursor = &next
	}
	if page.Data == nil {
		page.Data = []models.PostDetail{}
	}
	return page, nil
}

// Trending returns the most liked posts, ties broken by comment count.
func (s *PostQueryService) Trending(ctx context.Context) ([]models.PostDetail, error) {
	return s.store.FindPosts(ctx, PostQuery{Order: OrderTrending, Limit: TrendingLimit})
}

// ByAuthor returns the author's newest posts. An unknown author yields an empty list.
func (s *PostQueryService) ByAuthor(ctx context.Context, authorID uint) ([]models.PostDetail, error) {
	return s.store.FindPosts(ctx, PostQuery{AuthorID: authorID, Order: OrderNewest, Limit: ByAuthorLimit})
}

// WithMedia returns all posts that carry media, newest first, with comments newest first.
func (s *PostQueryService) WithMedia(ctx context.Context) ([]models.PostDetail, error) {
	return s.store.FindPosts(ctx, PostQuery{HasMedia: true, Order: OrderNewest, NewestCommentsFirst: true})
}

// Search matches the caption, author name or author username against text
// and orders by caption relevance.
func (s *PostQueryService) Search(ctx context.Context, text string) ([]models.PostDetail, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.PostDetail{}, nil
	}
	if len(text) > MaxSearchLength {
		return nil, fmt.Errorf("search text longer than %d bytes: %w", MaxSearchLength, ErrInvalid)
	}
	return s.store.FindPosts(ctx, PostQuery{Search: text, Order: OrderRelevance})
}

// Get returns a single post with comments newest first.
func (s *PostQueryService) Get(ctx context.Context, id uint) (*models.PostDetail, error) {
	post, err := s.store.FindPostDetail(ctx, id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return post, nil
}
