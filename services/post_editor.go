package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/utils"
)

const (
	MaxCaptionLength = 2200
	MaxMediaLength   = 1024
)

// CreatePostInput is the payload for a new post. AuthorID zero means the caller.
type CreatePostInput struct {
	Caption  string
	AuthorID uint
	Media    *string
}

// PostEditor creates, updates and deletes posts on behalf of their author.
type PostEditor struct {
	store PostStore
}

// NewPostEditor creates a PostEditor backed by store.
func NewPostEditor(store PostStore) *PostEditor {
	return &PostEditor{store: store}
}

// Create stores a new post authored by callerID.
func (p *PostEditor) Create(ctx context.Context, callerID uint, in CreatePostInput) (*models.PostDetail, error) {
	authorID := in.AuthorID
	if authorID == 0 {
		authorID = callerID
	}
	if authorID != callerID {
		return nil, fmt.Errorf("cannot post as user %d: %w", authorID, ErrForbidden)
	}

	caption, err := cleanCaption(in.Caption)
	if err != nil {
		return nil, err
	}
	media, err := cleanMedia(in.Media)
	if err != nil {
		return nil, err
	}

	if _, err := p.store.FindUser(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", authorID, ErrNotFound)
		}
		return nil, err
	}

	post := models.Post{AuthorID: authorID, Caption: caption, Media: media}
	if err := p.store.CreatePost(ctx, &post); err != nil {
		return nil, err
	}
	return p.store.FindPostDetail(ctx, post.ID, true)
}

// Update applies a partial update. Only the author may edit a post.
func (p *PostEditor) Update(ctx context.Context, callerID, postID uint, patch PostPatch) (*models.PostDetail, error) {
	if err := p.requireAuthor(ctx, callerID, postID); err != nil {
		return nil, err
	}

	if patch.Caption != nil {
		caption, err := cleanCaption(*patch.Caption)
		if err != nil {
			return nil, err
		}
		patch.Caption = &caption
	}
	if patch.ClearMedia {
		patch.Media = nil
	} else if patch.Media != nil {
		media, err := cleanMedia(patch.Media)
		if err != nil {
			return nil, err
		}
		patch.Media = media
	}

	if patch.Caption != nil || patch.Media != nil || patch.ClearMedia {
		if err := p.store.UpdatePost(ctx, postID, patch); err != nil {
			return nil, err
		}
	}
	return p.store.FindPostDetail(ctx, postID, true)
}

// Delete removes a post together with its likes and comments.
func (p *PostEditor) Delete(ctx context.Context, callerID, postID uint) error {
	if err := p.requireAuthor(ctx, callerID, postID); err != nil {
		return err
	}
	return p.store.DeletePost(ctx, postID)
}

func (p *PostEditor) requireAuthor(ctx context.Context, callerID, postID uint) error {
	post, err := p.store.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return err
	}
	if post.AuthorID != callerID {
		return fmt.Errorf("post %d: %w", postID, ErrForbidden)
	}
	return nil
}

func cleanCaption(raw string) (string, error) {
	caption := strings.TrimSpace(utils.Sanitize(raw))
	if caption == "" {
		return "", fmt.Errorf("caption cannot be empty: %w", ErrInvalid)
	}
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return "", fmt.Errorf("caption longer than %d characters: %w", MaxCaptionLength, ErrInvalid)
	}
	return caption, nil
}

func cleanMedia(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	media := strings.TrimSpace(*raw)
	if media == "" {
		return nil, fmt.Errorf("media cannot be empty: %w", ErrInvalid)
	}
	if len(media) > MaxMediaLength {
		return nil, fmt.Errorf("media longer than %d bytes: %w", MaxMediaLength, ErrInvalid)
	}
	return &media, nil
}
