package repository

import (
	"context"

	"github.com/MitulSonagara/blog-backend/internal/domain"
)

// UserRepository defines the interface for user data access.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateRefreshTokenHash sets or clears the stored refresh token hash
	UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error
}

// PostRepository defines the interface for post data access.
// Lookups return (nil, nil) when no row matches.
type PostRepository interface {
	// Create creates a new post
	Create(ctx context.Context, post *domain.Post) error
	// GetByID retrieves a post by ID with its author name
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	// FindPage lists posts ordered by creation time descending with an
	// optional case-insensitive title substring filter
	FindPage(ctx context.Context, skip, limit int, title string) ([]*domain.Post, int64, error)
	// Update updates a post
	Update(ctx context.Context, post *domain.Post) error
	// Delete deletes a post
	Delete(ctx context.Context, id string) error
}
