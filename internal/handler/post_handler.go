package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MitulSonagara/blog-backend/internal/dto"
	"github.com/MitulSonagara/blog-backend/internal/middleware"
	"github.com/MitulSonagara/blog-backend/internal/service"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
	"github.com/MitulSonagara/blog-backend/pkg/response"
)

// PostHandler handles post endpoints
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// List handles GET /posts
func (h *PostHandler) List(c *gin.Context) {
	var query dto.ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.posts.List(c.Request.Context(), query)
	if err != nil {
		logger.Get().Error("post listing failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	items := make([]dto.PostResponse, 0, len(result.Items))
	for _, post := range result.Items {
		items = append(items, dto.ToPostResponse(post))
	}

	response.Paginated(c, items, response.PaginationMeta(result.Meta))
}

// Get handles GET /posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "Post not found")
			return
		}
		logger.Get().Error("post lookup failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Success(c, dto.ToPostResponse(post))
}

// Create handles POST /posts, requires authentication
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		logger.Get().Error("post creation failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, dto.ToPostResponse(post))
}

// Update handles PATCH /posts/:id, owner or admin only
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	post, err := h.posts.Update(c.Request.Context(),
		middleware.UserID(c), middleware.UserRole(c), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			response.Forbidden(c, "PERMISSION_DENIED", "You can only modify your own posts")
		default:
			logger.Get().Error("post update failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Success(c, dto.ToPostResponse(post))
}

// Delete handles DELETE /posts/:id, owner or admin only
func (h *PostHandler) Delete(c *gin.Context) {
	err := h.posts.Remove(c.Request.Context(),
		middleware.UserID(c), middleware.UserRole(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			response.Forbidden(c, "PERMISSION_DENIED", "You can only modify your own posts")
		default:
			logger.Get().Error("post deletion failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.NoContent(c)
}
