package domain

import (
	"time"
)

// Post represents a blog post. AuthorID is the owning user reference;
// AuthorName is denormalized from the users table for read responses.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the given user owns this post
func (p *Post) IsOwnedBy(userID string) bool {
	return p.AuthorID == userID
}
