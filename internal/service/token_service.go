package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/pkg/config"
)

// TokenService issues and verifies the two JWT kinds. Access and refresh
// tokens are signed with separate secrets so one kind never passes
// verification as the other.
type TokenService struct {
	accessSecret    string
	refreshSecret   string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewTokenService creates a new TokenService
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		accessSecret:    cfg.AccessSecret,
		refreshSecret:   cfg.RefreshSecret,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
	}
}

// AccessTokenTTL returns the configured access token lifetime
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime
func (s *TokenService) RefreshTokenTTL() time.Duration {
	return s.refreshTokenTTL
}

// IssuePair generates an access and refresh token pair for the user
func (s *TokenService) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.issue(user, domain.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.issue(user, domain.TokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// Verify parses the token, checks its signature against the secret for the
// expected kind and rejects tokens of the wrong kind
func (s *TokenService) Verify(tokenString string, kind domain.TokenKind) (*domain.Claims, error) {
	secret := s.accessSecret
	if kind == domain.TokenKindRefresh {
		secret = s.refreshSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	tokenKind, _ := claims["kind"].(string)
	if userID == "" || domain.TokenKind(tokenKind) != kind {
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID: userID,
		Email:  email,
		Role:   domain.Role(role),
		Kind:   domain.TokenKind(tokenKind),
	}, nil
}

func (s *TokenService) issue(user *domain.User, kind domain.TokenKind) (string, error) {
	secret := s.accessSecret
	ttl := s.accessTokenTTL
	if kind == domain.TokenKindRefresh {
		secret = s.refreshSecret
		ttl = s.refreshTokenTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"kind": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	// Refresh tokens carry the subject alone; identity is reloaded on rotation.
	if kind == domain.TokenKindAccess {
		claims["email"] = user.Email
		claims["role"] = string(user.Role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
