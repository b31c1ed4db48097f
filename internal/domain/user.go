package domain

import (
	"time"
)

// Role represents user role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user entity. HashedRefreshToken holds the bcrypt hash of
// the currently valid refresh token; nil means no active refresh session.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"` // Never serialize password
	Name               string    `json:"name"`
	Role               Role      `json:"role"`
	HashedRefreshToken *string   `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TokenKind distinguishes access and refresh tokens
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until access token expires
}

// Claims represents verified JWT claims. Email and Role are only present on
// access tokens; refresh tokens carry the subject alone.
type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Kind   TokenKind `json:"kind"`
}

// UserRegisteredEvent is published when a new user registers
type UserRegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}
