package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/internal/dto"
)

type mockPostRepository struct {
	mu         sync.Mutex
	posts      map[string]*domain.Post
	getCalls   int
	findCalls  int
	authorName string
}

func newMockPostRepository() *mockPostRepository {
	return &mockPostRepository{
		posts:      make(map[string]*domain.Post),
		authorName: "Alice",
	}
}

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *post
	copied.AuthorName = m.authorName
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	post, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (m *mockPostRepository) FindPage(ctx context.Context, skip, limit int, title string) ([]*domain.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++

	matched := make([]*domain.Post, 0, len(m.posts))
	for _, post := range m.posts {
		if title == "" || strings.Contains(strings.ToLower(post.Title), strings.ToLower(title)) {
			copied := *post
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if skip >= len(matched) {
		return []*domain.Post{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (m *mockPostRepository) Update(ctx context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.posts[post.ID]
	if !ok {
		return nil
	}
	existing.Title = post.Title
	existing.Content = post.Content
	existing.UpdatedAt = post.UpdatedAt
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]string
	deleted []string
	getErr  error
	delErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	for _, key := range keys {
		delete(m.entries, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func newTestPostService() (*PostService, *mockPostRepository, *mockCache) {
	repo := newMockPostRepository()
	cache := newMockCache()
	return NewPostService(repo, cache), repo, cache
}

func seedPosts(t *testing.T, svc *PostService, authorID string, n int) []*domain.Post {
	t.Helper()
	posts := make([]*domain.Post, 0, n)
	for i := 0; i < n; i++ {
		post, err := svc.Create(context.Background(), authorID, dto.CreatePostRequest{
			Title:   fmt.Sprintf("Post %d", i),
			Content: fmt.Sprintf("Content of post %d", i),
		})
		require.NoError(t, err)
		posts = append(posts, post)
	}
	return posts
}

func TestPostService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates cache, hit skips repository", func(t *testing.T) {
		svc, repo, cache := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		repo.mu.Lock()
		repo.getCalls = 0
		repo.mu.Unlock()

		first, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Title, first.Title)
		assert.True(t, cache.has("post_"+post.ID))

		second, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		repo.mu.Lock()
		assert.Equal(t, 1, repo.getCalls)
		repo.mu.Unlock()
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		_, err := svc.Get(ctx, "missing-id")
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("cache failure falls through to repository", func(t *testing.T) {
		svc, _, cache := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]
		cache.getErr = fmt.Errorf("connection refused")

		found, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, found.ID)
	})
}

func TestPostService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination meta", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		seedPosts(t, svc, "author-1", 25)

		result, err := svc.List(ctx, dto.ListPostsQuery{Page: 2, Limit: 10})
		require.NoError(t, err)

		assert.Len(t, result.Items, 10)
		assert.Equal(t, 2, result.Meta.CurrentPage)
		assert.Equal(t, 10, result.Meta.ItemsPerPage)
		assert.Equal(t, int64(25), result.Meta.TotalItems)
		assert.Equal(t, 3, result.Meta.TotalPages)
		assert.True(t, result.Meta.HasPreviousPage)
		assert.True(t, result.Meta.HasNextPage)
	})

	t.Run("last page", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		seedPosts(t, svc, "author-1", 25)

		result, err := svc.List(ctx, dto.ListPostsQuery{Page: 3, Limit: 10})
		require.NoError(t, err)

		assert.Len(t, result.Items, 5)
		assert.True(t, result.Meta.HasPreviousPage)
		assert.False(t, result.Meta.HasNextPage)
	})

	t.Run("second identical query served from cache", func(t *testing.T) {
		svc, repo, _ := newTestPostService()
		seedPosts(t, svc, "author-1", 5)

		_, err := svc.List(ctx, dto.ListPostsQuery{Page: 1, Limit: 10})
		require.NoError(t, err)

		repo.mu.Lock()
		calls := repo.findCalls
		repo.mu.Unlock()

		_, err = svc.List(ctx, dto.ListPostsQuery{Page: 1, Limit: 10})
		require.NoError(t, err)

		repo.mu.Lock()
		assert.Equal(t, calls, repo.findCalls)
		repo.mu.Unlock()
	})

	t.Run("title filter", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		_, err := svc.Create(ctx, "author-1", dto.CreatePostRequest{Title: "Go tutorial", Content: "about go"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, "author-1", dto.CreatePostRequest{Title: "Rust tutorial", Content: "about rust"})
		require.NoError(t, err)

		result, err := svc.List(ctx, dto.ListPostsQuery{Title: "go"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Go tutorial", result.Items[0].Title)
	})

	t.Run("defaults applied", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		result, err := svc.List(ctx, dto.ListPostsQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Meta.CurrentPage)
		assert.Equal(t, 10, result.Meta.ItemsPerPage)
	})
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, cache := newTestPostService()

	// Warm a list page so creation has something to evict.
	_, err := svc.List(ctx, dto.ListPostsQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.True(t, cache.has("posts_list_page1_limit10_titleall"))

	post, err := svc.Create(ctx, "author-1", dto.CreatePostRequest{
		Title:   "New post",
		Content: "Fresh content",
	})
	require.NoError(t, err)

	assert.Equal(t, "author-1", post.AuthorID)
	assert.Equal(t, "Alice", post.AuthorName)
	assert.False(t, cache.has("posts_list_page1_limit10_titleall"))
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates title only", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		updated, err := svc.Update(ctx, "author-1", domain.RoleUser, post.ID, dto.UpdatePostRequest{
			Title: "Renamed",
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, post.Content, updated.Content)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		_, err := svc.Update(ctx, "intruder", domain.RoleUser, post.ID, dto.UpdatePostRequest{
			Title: "Hijacked",
		})
		assert.ErrorIs(t, err, ErrNotPostOwner)
	})

	t.Run("admin may update any post", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		updated, err := svc.Update(ctx, "admin-1", domain.RoleAdmin, post.ID, dto.UpdatePostRequest{
			Content: "Moderated content",
		})
		require.NoError(t, err)
		assert.Equal(t, "Moderated content", updated.Content)
	})

	t.Run("missing post reported before ownership", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		_, err := svc.Update(ctx, "intruder", domain.RoleUser, "missing-id", dto.UpdatePostRequest{
			Title: "Whatever",
		})
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("evicts post and list caches", func(t *testing.T) {
		svc, _, cache := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		_, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		_, err = svc.List(ctx, dto.ListPostsQuery{Page: 1, Limit: 10})
		require.NoError(t, err)

		_, err = svc.Update(ctx, "author-1", domain.RoleUser, post.ID, dto.UpdatePostRequest{Title: "Renamed"})
		require.NoError(t, err)

		assert.False(t, cache.has("post_"+post.ID))
		assert.False(t, cache.has("posts_list_page1_limit10_titleall"))
	})
}

func TestPostService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		svc, _, cache := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		_, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, "author-1", domain.RoleUser, post.ID))
		assert.False(t, cache.has("post_"+post.ID))

		_, err = svc.Get(ctx, post.ID)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		err := svc.Remove(ctx, "intruder", domain.RoleUser, post.ID)
		assert.ErrorIs(t, err, ErrNotPostOwner)
	})

	t.Run("admin deletes any post", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		post := seedPosts(t, svc, "author-1", 1)[0]

		assert.NoError(t, svc.Remove(ctx, "admin-1", domain.RoleAdmin, post.ID))
	})

	t.Run("missing post", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		err := svc.Remove(ctx, "author-1", domain.RoleUser, "missing-id")
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestPostService_EvictionSurvivesCacheFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, cache := newTestPostService()
	svc.retryCfg.InitialInterval = time.Millisecond

	post := seedPosts(t, svc, "author-1", 1)[0]
	cache.delErr = fmt.Errorf("connection refused")

	// The mutation itself must still succeed.
	_, err := svc.Update(ctx, "author-1", domain.RoleUser, post.ID, dto.UpdatePostRequest{Title: "Renamed"})
	assert.NoError(t, err)
}
