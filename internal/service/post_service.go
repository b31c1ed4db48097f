package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/internal/dto"
	"github.com/MitulSonagara/blog-backend/internal/repository"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
	"github.com/MitulSonagara/blog-backend/pkg/retry"
)

const postCacheTTL = 30 * time.Second

// PostService handles post CRUD with a read-through cache. Single posts and
// list pages are cached for a short TTL; every mutation evicts the post key
// and all list keys served since the last eviction, before returning.
type PostService struct {
	posts repository.PostRepository
	cache Cache

	// listKeys tracks list cache keys written by this process so they can
	// be evicted without a wildcard scan.
	mu       sync.Mutex
	listKeys map[string]struct{}

	retryCfg *retry.Config
}

// NewPostService creates a new PostService
func NewPostService(posts repository.PostRepository, cache Cache) *PostService {
	return &PostService{
		posts:    posts,
		cache:    cache,
		listKeys: make(map[string]struct{}),
		retryCfg: retry.DefaultConfig(),
	}
}

// List returns a page of posts, served from cache when possible
func (s *PostService) List(ctx context.Context, query dto.ListPostsQuery) (*dto.PaginatedPosts, error) {
	query.SetDefaults()
	key := listCacheKey(query.Page, query.Limit, query.Title)

	if cached, found, err := s.cache.Get(ctx, key); err != nil {
		logger.Get().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		result := &dto.PaginatedPosts{}
		if err := json.Unmarshal([]byte(cached), result); err == nil {
			return result, nil
		}
		logger.Get().Warn("corrupt cache entry, falling through", zap.String("key", key))
	}

	skip := (query.Page - 1) * query.Limit
	posts, total, err := s.posts.FindPage(ctx, skip, query.Limit, query.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(query.Limit)))
	result := &dto.PaginatedPosts{
		Items: posts,
		Meta: dto.PaginationMeta{
			CurrentPage:     query.Page,
			ItemsPerPage:    query.Limit,
			TotalItems:      total,
			TotalPages:      totalPages,
			HasPreviousPage: query.Page > 1,
			HasNextPage:     query.Page < totalPages,
		},
	}

	s.cacheSet(ctx, key, result, true)
	return result, nil
}

// Get returns a single post, served from cache when possible
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	key := postCacheKey(id)

	if cached, found, err := s.cache.Get(ctx, key); err != nil {
		logger.Get().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		post := &domain.Post{}
		if err := json.Unmarshal([]byte(cached), post); err == nil {
			return post, nil
		}
		logger.Get().Warn("corrupt cache entry, falling through", zap.String("key", key))
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	s.cacheSet(ctx, key, post, false)
	return post, nil
}

// Create creates a post owned by the given user and evicts cached lists
func (s *PostService) Create(ctx context.Context, authorID string, req dto.CreatePostRequest) (*domain.Post, error) {
	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Reload to pick up the denormalized author name.
	created, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created post: %w", err)
	}
	if created != nil {
		post = created
	}

	s.evictLists(ctx)

	logger.Get().Info("post created",
		zap.String("post_id", post.ID),
		zap.String("author_id", authorID))
	return post, nil
}

// Update applies a partial update after the ownership check. Admins may
// update any post; other users only their own. Missing posts report not
// found before ownership is considered.
func (s *PostService) Update(ctx context.Context, userID string, role domain.Role, id string, req dto.UpdatePostRequest) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.IsOwnedBy(userID) && role != domain.RoleAdmin {
		return nil, ErrNotPostOwner
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	post.UpdatedAt = time.Now()

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.evictPost(ctx, id)
	s.evictLists(ctx)

	logger.Get().Info("post updated",
		zap.String("post_id", id),
		zap.String("user_id", userID))
	return post, nil
}

// Remove deletes a post after the ownership check
func (s *PostService) Remove(ctx context.Context, userID string, role domain.Role, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return ErrPostNotFound
	}
	if !post.IsOwnedBy(userID) && role != domain.RoleAdmin {
		return ErrNotPostOwner
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.evictPost(ctx, id)
	s.evictLists(ctx)

	logger.Get().Info("post deleted",
		zap.String("post_id", id),
		zap.String("user_id", userID))
	return nil
}

func (s *PostService) cacheSet(ctx context.Context, key string, value interface{}, isList bool) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), postCacheTTL); err != nil {
		logger.Get().Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if isList {
		s.mu.Lock()
		s.listKeys[key] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *PostService) evictPost(ctx context.Context, id string) {
	s.evict(ctx, postCacheKey(id))
}

func (s *PostService) evictLists(ctx context.Context) {
	s.mu.Lock()
	keys := make([]string, 0, len(s.listKeys))
	for key := range s.listKeys {
		keys = append(keys, key)
	}
	s.listKeys = make(map[string]struct{})
	s.mu.Unlock()

	s.evict(ctx, keys...)
}

// evict deletes cache keys, retrying transient failures. On exhaustion it
// logs and moves on; the TTL bounds how long a stale entry survives.
func (s *PostService) evict(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		return s.cache.Del(ctx, keys...)
	})
	if err != nil {
		logger.Get().Error("cache eviction failed",
			zap.Strings("keys", keys),
			zap.Error(err))
	}
}

func postCacheKey(id string) string {
	return fmt.Sprintf("post_%s", id)
}

func listCacheKey(page, limit int, title string) string {
	t := title
	if t == "" {
		t = "all"
	}
	return fmt.Sprintf("posts_list_page%d_limit%d_title%s", page, limit, t)
}
