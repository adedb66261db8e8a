package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/utils"
)

const MaxCommentLength = 2000

// EngagementService applies likes and comments after existence and ownership checks.
type EngagementService struct {
	store PostStore
}

// NewEngagementService creates an EngagementService backed by store.
func NewEngagementService(store PostStore) *EngagementService {
	return &EngagementService{store: store}
}

// Like adds userID to the post's liker set. Liking twice is a no-op.
func (e *EngagementService) Like(ctx context.Context, userID, postID uint) error {
	if err := e.requirePostAndUser(ctx, postID, userID); err != nil {
		return err
	}
	return e.store.AddLike(ctx, postID, userID)
}

// Unlike removes userID from the post's liker set. Removing a non-member is a no-op.
func (e *EngagementService) Unlike(ctx context.Context, userID, postID uint) error {
	if err := e.requirePostAndUser(ctx, postID, userID); err != nil {
		return err
	}
	return e.store.RemoveLike(ctx, postID, userID)
}

// AddComment creates a comment by userID under postID.
func (e *EngagementService) AddComment(ctx context.Context, userID, postID uint, content string) (*models.CommentDetail, error) {
	content = strings.TrimSpace(utils.Sanitize(content))
	if content == "" {
		return nil, fmt.Errorf("comment content cannot be empty: %w", ErrInvalid)
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, fmt.Errorf("comment longer than %d characters: %w", MaxCommentLength, ErrInvalid)
	}
	if err := e.requirePostAndUser(ctx, postID, userID); err != nil {
		return nil, err
	}
	return e.store.CreateComment(ctx, &models.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  content,
	})
}

// DeleteComment removes a comment. The caller must be its author and the
// comment must belong to postID.
func (e *EngagementService) DeleteComment(ctx context.Context, commentID, postID, userID uint) error {
	comment, err := e.store.FindComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
		}
		return err
	}
	if comment.AuthorID != userID || comment.PostID != postID {
		return fmt.Errorf("comment %d: %w", commentID, ErrForbidden)
	}
	return e.store.DeleteComment(ctx, commentID)
}

// ListComments returns a post's comments in creation order.
func (e *EngagementService) ListComments(ctx context.Context, postID uint) ([]models.CommentDetail, error) {
	if err := e.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return e.store.ListComments(ctx, postID)
}

// requirePostAndUser runs both existence checks concurrently and waits for
// both. A store failure in either check wins over NotFound; when both rows
// are missing the two NotFound errors are combined.
func (e *EngagementService) requirePostAndUser(ctx context.Context, postID, userID uint) error {
	var postErr, userErr error
	var g errgroup.Group
	g.Go(func() error {
		postErr = e.requirePost(ctx, postID)
		return storeFailure(postErr)
	})
	g.Go(func() error {
		userErr = e.requireUser(ctx, userID)
		return storeFailure(userErr)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return multierr.Combine(postErr, userErr)
}

// storeFailure keeps err only when it is not a NotFound.
func storeFailure(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (e *EngagementService) requirePost(ctx context.Context, postID uint) error {
	if _, err := e.store.FindPost(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return err
	}
	return nil
}

func (e *EngagementService) requireUser(ctx context.Context, userID uint) error {
	if _, err := e.store.FindUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return err
	}
	return nil
}
