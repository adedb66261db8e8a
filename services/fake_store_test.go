package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/postfeed/models"
)

// fakeStore is an in-memory PostStore. It is safe for the concurrent
// existence checks run by EngagementService.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uint]models.User
	posts    map[uint]models.Post
	comments map[uint]models.Comment
	likes    map[uint]map[uint]bool
	nextPost uint
	nextCmt  uint
	clock    time.Time

	lastQuery PostQuery
	updates   int

	// failPosts and failUsers make the lookups fail as a broken store would.
	failPosts error
	failUsers error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uint]models.User{},
		posts:    map[uint]models.Post{},
		comments: map[uint]models.Comment{},
		likes:    map[uint]map[uint]bool{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeStore) addUser(id uint, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = models.User{ID: id, Username: username, Name: strings.ToUpper(username)}
}

func (f *fakeStore) addPost(authorID uint, caption string, media *string) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPost++
	now := f.tick()
	f.posts[f.nextPost] = models.Post{ID: f.nextPost, AuthorID: authorID, Caption: caption, Media: media, CreatedAt: now, UpdatedAt: now}
	return f.nextPost
}

func (f *fakeStore) addComment(postID, authorID uint, content string) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCmt++
	f.comments[f.nextCmt] = models.Comment{ID: f.nextCmt, PostID: postID, AuthorID: authorID, Content: content, CreatedAt: f.tick()}
	return f.nextCmt
}

func (f *fakeStore) FindPosts(_ context.Context, q PostQuery) ([]models.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q

	var out []models.Post
	for _, p := range f.posts {
		if q.BeforeID > 0 && p.ID >= q.BeforeID {
			continue
		}
		if q.AuthorID > 0 && p.AuthorID != q.AuthorID {
			continue
		}
		if q.HasMedia && p.Media == nil {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Caption), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch q.Order {
		case OrderNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		case OrderIDDesc, OrderRelevance:
			return a.ID > b.ID
		case OrderTrending:
			la, lb := len(f.likes[a.ID]), len(f.likes[b.ID])
			if la != lb {
				return la > lb
			}
			ca, cb := f.commentCount(a.ID), f.commentCount(b.ID)
			if ca != cb {
				return ca > cb
			}
			return a.ID > b.ID
		default:
			return a.ID < b.ID
		}
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	details := make([]models.PostDetail, 0, len(out))
	for _, p := range out {
		details = append(details, f.detail(p, q.NewestCommentsFirst))
	}
	return details, nil
}

func (f *fakeStore) commentCount(postID uint) int {
	n := 0
	for _, c := range f.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

func (f *fakeStore) detail(p models.Post, newestCommentsFirst bool) models.PostDetail {
	d := models.PostDetail{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Caption:   p.Caption,
		Media:     p.Media,
		CreatedAt: p.CreatedAt,
		Author:    f.users[p.AuthorID].Summary(),
		LikedBy:   []models.LikerRef{},
		Comments:  []models.CommentDetail{},
	}
	for uid := range f.likes[p.ID] {
		d.LikedBy = append(d.LikedBy, models.LikerRef{ID: uid})
	}
	sort.Slice(d.LikedBy, func(i, j int) bool { return d.LikedBy[i].ID < d.LikedBy[j].ID })
	for _, c := range f.comments {
		if c.PostID == p.ID {
			d.Comments = append(d.Comments, f.commentDetail(c))
		}
	}
	sort.Slice(d.Comments, func(i, j int) bool {
		if newestCommentsFirst {
			return d.Comments[i].ID > d.Comments[j].ID
		}
		return d.Comments[i].ID < d.Comments[j].ID
	})
	d.LikeCount = len(d.LikedBy)
	d.CommentCount = len(d.Comments)
	return d
}

func (f *fakeStore) commentDetail(c models.Comment) models.CommentDetail {
	return models.CommentDetail{ID: c.ID, PostID: c.PostID, Content: c.Content, CreatedAt: c.CreatedAt, Author: f.users[c.AuthorID].Summary()}
}

func (f *fakeStore) FindPostDetail(_ context.Context, id uint, newestCommentsFirst bool) (*models.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d := f.detail(p, newestCommentsFirst)
	return &d, nil
}

func (f *fakeStore) FindPost(_ context.Context, id uint) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPosts != nil {
		return nil, f.failPosts
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeStore) FindUser(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers != nil {
		return nil, f.failUsers
	}
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeStore) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPost++
	post.ID = f.nextPost
	post.CreatedAt = f.tick()
	post.UpdatedAt = post.CreatedAt
	f.posts[post.ID] = *post
	return nil
}

func (f *fakeStore) UpdatePost(_ context.Context, id uint, patch PostPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.updates++
	if patch.Caption != nil {
		p.Caption = *patch.Caption
	}
	if patch.ClearMedia {
		p.Media = nil
	} else if patch.Media != nil {
		m := *patch.Media
		p.Media = &m
	}
	f.posts[id] = p
	return nil
}

func (f *fakeStore) DeletePost(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.posts, id)
	delete(f.likes, id)
	for cid, c := range f.comments {
		if c.PostID == id {
			delete(f.comments, cid)
		}
	}
	return nil
}

func (f *fakeStore) AddLike(_ context.Context, postID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likes[postID] == nil {
		f.likes[postID] = map[uint]bool{}
	}
	f.likes[postID][userID] = true
	return nil
}

func (f *fakeStore) RemoveLike(_ context.Context, postID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.likes[postID], userID)
	return nil
}

func (f *fakeStore) FindComment(_ context.Context, id uint) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeStore) CreateComment(_ context.Context, comment *models.Comment) (*models.CommentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCmt++
	comment.ID = f.nextCmt
	comment.CreatedAt = f.tick()
	f.comments[comment.ID] = *comment
	d := f.commentDetail(*comment)
	return &d, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeStore) ListComments(_ context.Context, postID uint) ([]models.CommentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CommentDetail{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, f.commentDetail(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) likers(postID uint) []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint, 0, len(f.likes[postID]))
	for uid := range f.likes[postID] {
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func postIDs(posts []models.PostDetail) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func idRange(from, to uint) []uint {
	var ids []uint
	if from >= to {
		for i := from; i >= to; i-- {
			ids = append(ids, i)
			if i == 0 {
				break
			}
		}
		return ids
	}
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}

var _ PostStore = (*fakeStore)(nil)
