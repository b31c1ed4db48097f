package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/internal/dto"
	"github.com/MitulSonagara/blog-backend/internal/middleware"
	"github.com/MitulSonagara/blog-backend/internal/service"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
	"github.com/MitulSonagara/blog-backend/pkg/response"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth   *service.AuthService
	tokens *service.TokenService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, "Email already registered")
			return
		}
		logger.Get().Error("registration failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Created(c, dto.RegisterResponse{
		User:    dto.ToUserResponse(user),
		Message: "Registration successful, please log in",
	})
}

// CreateAdmin handles POST /auth/create-admin, admin only
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	user, err := h.auth.CreateAdmin(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, "Email already registered")
			return
		}
		logger.Get().Error("admin creation failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Created(c, dto.RegisterResponse{
		User:    dto.ToUserResponse(user),
		Message: "Admin account created",
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "INVALID_CREDENTIALS", "Invalid credentials")
		default:
			logger.Get().Error("login failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}

	h.setTokenCookies(c, pair)
	response.Success(c, dto.LoginResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh handles POST /auth/refresh. The refresh token is read from the
// cookie first, then from the request body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		response.Unauthorized(c, "MISSING_TOKEN", "Refresh token required")
		return
	}

	user, pair, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			response.Unauthorized(c, "TOKEN_EXPIRED", "Refresh token expired")
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrRefreshTokenInvalid):
			response.Unauthorized(c, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
		default:
			logger.Get().Error("token refresh failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}

	h.setTokenCookies(c, pair)
	response.Success(c, dto.LoginResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout handles POST /auth/logout, requires authentication
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
		logger.Get().Error("logout failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	h.clearTokenCookies(c)
	response.Success(c, gin.H{"message": "Logged out"})
}

// Profile handles GET /auth/profile, requires authentication
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.auth.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		// Token subject no longer exists, the session is dead.
		if errors.Is(err, service.ErrUserNotFound) {
			response.Unauthorized(c, "USER_NOT_FOUND", "User no longer exists")
			return
		}
		logger.Get().Error("profile lookup failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, pair *domain.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken,
		int(h.tokens.AccessTokenTTL().Seconds()), "/", "", true, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken,
		int(h.tokens.RefreshTokenTTL().Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", true, true)
}
