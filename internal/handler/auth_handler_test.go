package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/internal/middleware"
	"github.com/MitulSonagara/blog-backend/internal/service"
	"github.com/MitulSonagara/blog-backend/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (m *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	user, _ := m.GetByEmail(ctx, email)
	return user != nil, nil
}

func (m *memoryUserRepository) UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.HashedRefreshToken = hash
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.UserRegisteredEvent) {}

func newAuthTestRouter() (*gin.Engine, *service.AuthService) {
	tokens := service.NewTokenService(config.JWTConfig{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})
	auth := service.NewAuthService(newMemoryUserRepository(), tokens, noopPublisher{}, bcrypt.MinCost)
	h := NewAuthHandler(auth, tokens)

	router := gin.New()
	group := router.Group("/auth")
	group.POST("/register", h.Register)
	group.POST("/login", h.Login)
	group.POST("/refresh", h.Refresh)
	group.POST("/logout", middleware.AuthenticateRefresh(tokens), h.Logout)
	group.GET("/profile", middleware.Authenticate(tokens), h.Profile)
	return router, auth
}

func doJSON(router *gin.Engine, method, path string, body interface{}, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range mutate {
		fn(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAlice(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router, _ := newAuthTestRouter()
		w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
			"email":    "alice@example.com",
			"password": "password123",
			"name":     "Alice",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
		assert.NotContains(t, w.Body.String(), "password123")
		assert.NotContains(t, w.Body.String(), "access_token")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		router, _ := newAuthTestRouter()
		registerAlice(t, router)

		w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
			"email":    "alice@example.com",
			"password": "password456",
			"name":     "Alice Two",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		router, _ := newAuthTestRouter()
		w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
			"email": "alice@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets cookies", func(t *testing.T) {
		router, _ := newAuthTestRouter()
		registerAlice(t, router)

		w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		cookies := w.Result().Cookies()
		names := map[string]*http.Cookie{}
		for _, cookie := range cookies {
			names[cookie.Name] = cookie
		}

		access, ok := names["access_token"]
		require.True(t, ok)
		assert.True(t, access.HttpOnly)
		assert.True(t, access.Secure)
		assert.Equal(t, 900, access.MaxAge)

		refresh, ok := names["refresh_token"]
		require.True(t, ok)
		assert.True(t, refresh.HttpOnly)
		assert.Equal(t, 604800, refresh.MaxAge)
	})

	t.Run("unknown email", func(t *testing.T) {
		router, _ := newAuthTestRouter()
		w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
			"email":    "nobody@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		router, _ := newAuthTestRouter()
		registerAlice(t, router)

		w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	router, _ := newAuthTestRouter()
	registerAlice(t, router)

	login := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var refreshCookie *http.Cookie
	for _, cookie := range login.Result().Cookies() {
		if cookie.Name == "refresh_token" {
			refreshCookie = cookie
		}
	}
	require.NotNil(t, refreshCookie)

	t.Run("via cookie", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/refresh", nil, func(req *http.Request) {
			req.AddCookie(refreshCookie)
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "access_token")
	})

	t.Run("missing token", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/refresh", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_TOKEN")
	})

	t.Run("rotated token rejected", func(t *testing.T) {
		// The cookie token was already rotated in the first subtest.
		w := doJSON(router, http.MethodPost, "/auth/refresh", gin.H{
			"refresh_token": refreshCookie.Value,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_REFRESH_TOKEN")
	})
}

func TestAuthHandler_LogoutAndProfile(t *testing.T) {
	router, _ := newAuthTestRouter()
	registerAlice(t, router)

	login := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var body struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &body))

	t.Run("profile", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/auth/profile", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+body.Data.AccessToken)
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
	})

	t.Run("logout invalidates refresh token", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/logout", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+body.Data.RefreshToken)
		})
		require.Equal(t, http.StatusOK, w.Code)

		refresh := doJSON(router, http.MethodPost, "/auth/refresh", gin.H{
			"refresh_token": body.Data.RefreshToken,
		})
		assert.Equal(t, http.StatusUnauthorized, refresh.Code)
	})
}
