package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/internal/service"
	"github.com/MitulSonagara/blog-backend/pkg/response"
)

// Context keys set by Authenticate
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// Cookie names tokens may arrive in
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Authenticate verifies the access token from the Authorization header or
// the access token cookie and stores the claims on the request context
func Authenticate(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token, domain.TokenKindAccess)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				response.Unauthorized(c, "TOKEN_EXPIRED", "Access token expired")
			} else {
				response.Unauthorized(c, "INVALID_TOKEN", "Invalid access token")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, string(claims.Role))
		c.Next()
	}
}

// AuthenticateRefresh verifies a refresh token from the Authorization header
// or the refresh token cookie. Used on routes that act on the refresh
// session itself, such as logout.
func AuthenticateRefresh(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractRefreshToken(c)
		if token == "" {
			response.Unauthorized(c, "MISSING_TOKEN", "Refresh token required")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token, domain.TokenKindRefresh)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				response.Unauthorized(c, "TOKEN_EXPIRED", "Refresh token expired")
			} else {
				response.Unauthorized(c, "INVALID_TOKEN", "Invalid refresh token")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated user
// holds one of the given roles. It must run after Authenticate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get(ContextRole)
		if !exists {
			response.Forbidden(c, "NOT_AUTHENTICATED", "Authentication required")
			c.Abort()
			return
		}

		role := domain.Role(roleValue.(string))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "PERMISSION_DENIED", "Insufficient permissions")
		c.Abort()
	}
}

// UserID returns the authenticated user ID from the context
func UserID(c *gin.Context) string {
	id, _ := c.Get(ContextUserID)
	s, _ := id.(string)
	return s
}

// UserRole returns the authenticated user role from the context
func UserRole(c *gin.Context) domain.Role {
	role, _ := c.Get(ContextRole)
	s, _ := role.(string)
	return domain.Role(s)
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func extractRefreshToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		return cookie
	}
	return ""
}
