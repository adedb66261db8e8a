package store

import (
	"context"

	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/utils"
)

// project assembles PostDetail values for posts with three batched reads
// (comments, likes, users) instead of per-row relation loading. The input
// order is preserved.
func (s *GormStore) project(ctx context.Context, posts []models.Post, newestCommentsFirst bool) ([]models.PostDetail, error) {
	out := make([]models.PostDetail, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
	}

	commentOrder := "created_at ASC, id ASC"
	if newestCommentsFirst {
		commentOrder = "created_at DESC, id DESC"
	}
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order(commentOrder).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	var likes []models.PostLike
	if err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC").Order("user_id ASC").
		Find(&likes).Error; err != nil {
		return nil, err
	}

	users, err := s.loadUsers(ctx, append(authorIDs, commentAuthorIDs(comments)...))
	if err != nil {
		return nil, err
	}

	commentsByPost := make(map[uint][]models.CommentDetail, len(posts))
	for _, c := range comments {
		commentsByPost[c.PostID] = append(commentsByPost[c.PostID], commentDetail(c, users))
	}
	likesByPost := make(map[uint][]models.LikerRef, len(posts))
	for _, l := range likes {
		likesByPost[l.PostID] = append(likesByPost[l.PostID], models.LikerRef{ID: l.UserID})
	}

	for _, p := range posts {
		d := models.PostDetail{
			ID:        p.ID,
			AuthorID:  p.AuthorID,
			Caption:   p.Caption,
			Media:     p.Media,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			LikedBy:   likesByPost[p.ID],
			Comments:  commentsByPost[p.ID],
		}
		if u, ok := users[p.AuthorID]; ok {
			d.Author = u.Summary()
		} else {
			d.Author = models.AuthorSummary{ID: p.AuthorID}
		}
		if d.LikedBy == nil {
			d.LikedBy = []models.LikerRef{}
		}
		if d.Comments == nil {
			d.Comments = []models.CommentDetail{}
		}
		d.LikeCount = len(d.LikedBy)
		d.CommentCount = len(d.Comments)
		out = append(out, d)
	}
	return out, nil
}

func (s *GormStore) loadUsers(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	ids = utils.UniqueUint(ids)
	userMap := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return userMap, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users, ids).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		userMap[u.ID] = u
	}
	return userMap, nil
}

func commentAuthorIDs(comments []models.Comment) []uint {
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	return ids
}

func commentDetail(c models.Comment, users map[uint]models.User) models.CommentDetail {
	d := models.CommentDetail{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Author:    models.AuthorSummary{ID: c.AuthorID},
	}
	if u, ok := users[c.AuthorID]; ok {
		d.Author = u.Summary()
	}
	return d
}
