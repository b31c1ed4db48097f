package dto

import (
	"strings"

	"github.com/MitulSonagara/blog-backend/internal/domain"
)

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Validate checks the structural field rules
func (r *CreatePostRequest) Validate() (bool, string) {
	title := strings.TrimSpace(r.Title)
	if len(title) < 3 || len(title) > 50 {
		return false, "Title must be between 3 and 50 characters"
	}
	if len(strings.TrimSpace(r.Content)) < 5 {
		return false, "Content must be at least 5 characters"
	}
	return true, ""
}

// UpdatePostRequest represents a partial post update. Empty fields are
// left unchanged.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the structural field rules for the fields present
func (r *UpdatePostRequest) Validate() (bool, string) {
	if r.Title != "" {
		title := strings.TrimSpace(r.Title)
		if len(title) < 3 || len(title) > 50 {
			return false, "Title must be between 3 and 50 characters"
		}
	}
	if r.Content != "" && len(strings.TrimSpace(r.Content)) < 5 {
		return false, "Content must be at least 5 characters"
	}
	return true, ""
}

// ListPostsQuery represents list filters and pagination
type ListPostsQuery struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Title string `form:"title"`
}

// SetDefaults applies default pagination values
func (q *ListPostsQuery) SetDefaults() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// PostResponse represents post data in responses
type PostResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// PaginationMeta describes a page of results
type PaginationMeta struct {
	CurrentPage     int   `json:"currentPage"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// PaginatedPosts is a page of posts with its metadata
type PaginatedPosts struct {
	Items []*domain.Post `json:"items"`
	Meta  PaginationMeta `json:"meta"`
}

// ToPostResponse converts a domain post to its response shape
func ToPostResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		AuthorID:   post.AuthorID,
		AuthorName: post.AuthorName,
		CreatedAt:  post.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  post.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
