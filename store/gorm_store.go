package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/services"
)

// GormStore implements services.PostStore on top of gorm.
type GormStore struct {
	db     *gorm.DB
	search searchDialect
}

var _ services.PostStore = (*GormStore)(nil)

// NewGormStore creates a GormStore. The full-text strategy follows the dialector.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, search: dialectFor(db.Dialector.Name())}
}

// FindPosts runs q as a single listing query and projects the result.
func (s *GormStore) FindPosts(ctx context.Context, q services.PostQuery) ([]models.PostDetail, error) {
	tx := s.db.WithContext(ctx).Model(&models.Post{}).Select("posts.*")
	if q.BeforeID > 0 {
		tx = tx.Where("posts.id < ?", q.BeforeID)
	}
	if q.AuthorID > 0 {
		tx = tx.Where("posts.author_id = ?", q.AuthorID)
	}
	if q.HasMedia {
		tx = tx.Where("posts.media IS NOT NULL")
	}
	if q.Search != "" {
		tx = s.search.filter(tx.Joins("JOIN users ON users.id = posts.author_id"), q.Search)
	}

	switch q.Order {
	case services.OrderNewest:
		tx = tx.Order("posts.created_at DESC").Order("posts.id DESC")
	case services.OrderIDDesc:
		tx = tx.Order("posts.id DESC")
	case services.OrderTrending:
		tx = tx.Order("(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) DESC").
			Order("(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) DESC").
			Order("posts.id DESC")
	case services.OrderRelevance:
		if q.Search == "" {
			tx = tx.Order("posts.id DESC")
			break
		}
		tx = s.search.rank(tx, q.Search)
	default:
		tx = tx.Order("posts.id ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var posts []models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, err
	}
	return s.project(ctx, posts, q.NewestCommentsFirst)
}

// FindPostDetail loads one post in its read-side shape.
func (s *GormStore) FindPostDetail(ctx context.Context, id uint, newestCommentsFirst bool) (*models.PostDetail, error) {
	post, err := s.FindPost(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.project(ctx, []models.Post{*post}, newestCommentsFirst)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *GormStore) FindPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// UpdatePost writes only the fields present in patch.
func (s *GormStore) UpdatePost(ctx context.Context, id uint, patch services.PostPatch) error {
	updates := map[string]interface{}{}
	if patch.Caption != nil {
		updates["caption"] = *patch.Caption
	}
	if patch.ClearMedia {
		updates["media"] = nil
	} else if patch.Media != nil {
		updates["media"] = *patch.Media
	}
	if len(updates) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.Post{ID: id}).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePost removes the post and everything hanging off it in one transaction.
func (s *GormStore) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostView{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddLike inserts the (post, user) pair; an existing pair is left as is.
func (s *GormStore) AddLike(ctx context.Context, postID, userID uint) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, UserID: userID}).Error
}

func (s *GormStore) RemoveLike(ctx context.Context, postID, userID uint) error {
	return s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}

func (s *GormStore) FindComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) (*models.CommentDetail, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	author, err := s.FindUser(ctx, comment.AuthorID)
	if err != nil {
		return nil, err
	}
	return &models.CommentDetail{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		Author:    author.Summary(),
	}, nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListComments returns the post's comments in creation order.
func (s *GormStore) ListComments(ctx context.Context, postID uint) ([]models.CommentDetail, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	users, err := s.loadUsers(ctx, commentAuthorIDs(comments))
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentDetail, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentDetail(c, users))
	}
	return out, nil
}
