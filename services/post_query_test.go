package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPosts(t *testing.T, n int) *fakeStore {
	t.Helper()
	fs := newFakeStore()
	fs.addUser(1, "alice")
	for i := 0; i < n; i++ {
		fs.addPost(1, "post", nil)
	}
	return fs
}

func TestInfinite_TwentyFivePostsInPagesOfTen(t *testing.T) {
	svc := NewPostQueryService(seedPosts(t, 25))
	ctx := context.Background()

	page, err := svc.Infinite(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, idRange(25, 16), postIDs(page.Data))
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, uint(16), *page.NextCursor)

	page, err = svc.Infinite(ctx, *page.NextCursor, 10)
	require.NoError(t, err)
	assert.Equal(t, idRange(15, 6), postIDs(page.Data))
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, uint(6), *page.NextCursor)

	page, err = svc.Infinite(ctx, *page.NextCursor, 10)
	require.NoError(t, err)
	assert.Equal(t, idRange(5, 1), postIDs(page.Data))
	assert.Nil(t, page.NextCursor)
}

func TestInfinite_ConcatenationCoversEveryPostOnce(t *testing.T) {
	for _, tc := range []struct {
		posts int
		limit int
	}{
		{posts: 0, limit: 10},
		{posts: 1, limit: 1},
		{posts: 7, limit: 3},
		{posts: 20, limit: 10},
		{posts: 21, limit: 10},
		{posts: 9, limit: 100},
	} {
		svc := NewPostQueryService(seedPosts(t, tc.posts))
		var seen []uint
		var cursor uint
		for pages := 0; ; pages++ {
			require.Less(t, pages, tc.posts+2, "pagination did not terminate")
			page, err := svc.Infinite(context.Background(), cursor, tc.limit)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page.Data), tc.limit)
			for _, p := range page.Data {
				if cursor > 0 {
					assert.Less(t, p.ID, cursor)
				}
				seen = append(seen, p.ID)
			}
			if page.NextCursor == nil {
				break
			}
			cursor = *page.NextCursor
		}
		if tc.posts == 0 {
			assert.Empty(t, seen)
			continue
		}
		assert.Equal(t, idRange(uint(tc.posts), 1), seen, "posts=%d limit=%d", tc.posts, tc.limit)
	}
}

func TestInfinite_FetchesOneExtraRow(t *testing.T) {
	fs := seedPosts(t, 3)
	svc := NewPostQueryService(fs)

	page, err := svc.Infinite(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, fs.lastQuery.Limit)
	assert.Equal(t, OrderIDDesc, fs.lastQuery.Order)
	assert.Len(t, page.Data, 3)
	assert.Nil(t, page.NextCursor)
}

func TestInfinite_EmptyPageIsNotNil(t *testing.T) {
	svc := NewPostQueryService(seedPosts(t, 3))

	page, err := svc.Infinite(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.NextCursor)
}

func TestInfinite_RejectsLimitOutOfRange(t *testing.T) {
	svc := NewPostQueryService(seedPosts(t, 1))
	for _, limit := range []int{0, -1, MaxPageSize + 1} {
		_, err := svc.Infinite(context.Background(), 0, limit)
		assert.ErrorIs(t, err, ErrInvalid, "limit=%d", limit)
	}
}

func TestRecent_AtMostTwentyNewestFirst(t *testing.T) {
	for _, n := range []int{0, 5, 20, 33} {
		svc := NewPostQueryService(seedPosts(t, n))
		posts, err := svc.Recent(context.Background())
		require.NoError(t, err)

		want := n
		if want > RecentLimit {
			want = RecentLimit
		}
		require.Len(t, posts, want)
		if want > 0 {
			assert.Equal(t, idRange(uint(n), uint(n-want+1)), postIDs(posts))
		}
	}
}

func TestListAll_ReturnsEveryPost(t *testing.T) {
	svc := NewPostQueryService(seedPosts(t, 4))
	posts, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 3, 4}, postIDs(posts))
}

func TestTrending_OrdersByLikesThenComments(t *testing.T) {
	fs := seedPosts(t, 5)
	for _, uid := range []uint{2, 3, 4} {
		fs.addUser(uid, "u")
	}
	// post 2: 2 likes, post 4: 2 likes + 1 comment, post 5: 1 like, post 1: 0 likes + 3 comments
	ctx := context.Background()
	require.NoError(t, fs.AddLike(ctx, 2, 2))
	require.NoError(t, fs.AddLike(ctx, 2, 3))
	require.NoError(t, fs.AddLike(ctx, 4, 2))
	require.NoError(t, fs.AddLike(ctx, 4, 3))
	require.NoError(t, fs.AddLike(ctx, 5, 4))
	fs.addComment(4, 2, "nice")
	fs.addComment(1, 2, "a")
	fs.addComment(1, 3, "b")
	fs.addComment(1, 4, "c")

	posts, err := NewPostQueryService(fs).Trending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 2, 5}, postIDs(posts))
	assert.Equal(t, TrendingLimit, fs.lastQuery.Limit)
}

func TestByAuthor_FiltersAndLimits(t *testing.T) {
	fs := newFakeStore()
	fs.addUser(1, "alice")
	fs.addUser(2, "bob")
	for i := 0; i < 25; i++ {
		fs.addPost(1, "a", nil)
	}
	bobPost := fs.addPost(2, "b", nil)

	svc := NewPostQueryService(fs)
	posts, err := svc.ByAuthor(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, posts, ByAuthorLimit)
	assert.Equal(t, uint(25), posts[0].ID)
	for _, p := range posts {
		assert.Equal(t, uint(1), p.AuthorID)
	}

	posts, err = svc.ByAuthor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{bobPost}, postIDs(posts))

	posts, err = svc.ByAuthor(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestWithMedia_OnlyMediaPostsWithNewestComments(t *testing.T) {
	fs := newFakeStore()
	fs.addUser(1, "alice")
	media := "https://cdn.example.com/a.jpg"
	withMedia := fs.addPost(1, "pic", &media)
	fs.addPost(1, "text only", nil)
	first := fs.addComment(withMedia, 1, "first")
	second := fs.addComment(withMedia, 1, "second")

	posts, err := NewPostQueryService(fs).WithMedia(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, withMedia, posts[0].ID)
	require.Len(t, posts[0].Comments, 2)
	assert.Equal(t, second, posts[0].Comments[0].ID)
	assert.Equal(t, first, posts[0].Comments[1].ID)
	assert.True(t, fs.lastQuery.NewestCommentsFirst)
}

func TestSearch(t *testing.T) {
	fs := newFakeStore()
	fs.addUser(1, "alice")
	fs.addPost(1, "Sunset over the bay", nil)
	fs.addPost(1, "Morning coffee", nil)
	svc := NewPostQueryService(fs)
	ctx := context.Background()

	t.Run("matches caption", func(t *testing.T) {
		posts, err := svc.Search(ctx, "  sunset ")
		require.NoError(t, err)
		assert.Equal(t, []uint{1}, postIDs(posts))
		assert.Equal(t, "sunset", fs.lastQuery.Search)
		assert.Equal(t, OrderRelevance, fs.lastQuery.Order)
	})

	t.Run("blank text returns empty list", func(t *testing.T) {
		posts, err := svc.Search(ctx, "   ")
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("overlong text is rejected", func(t *testing.T) {
		_, err := svc.Search(ctx, strings.Repeat("x", MaxSearchLength+1))
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestGet(t *testing.T) {
	fs := newFakeStore()
	fs.addUser(1, "alice")
	id := fs.addPost(1, "hello", nil)
	older := fs.addComment(id, 1, "older")
	newer := fs.addComment(id, 1, "newer")
	svc := NewPostQueryService(fs)

	post, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", post.Author.Username)
	assert.Equal(t, []uint{newer, older}, []uint{post.Comments[0].ID, post.Comments[1].ID})
	assert.Equal(t, 2, post.CommentCount)

	_, err = svc.Get(context.Background(), 404)
	assert.True(t, errors.Is(err, ErrNotFound))
}
