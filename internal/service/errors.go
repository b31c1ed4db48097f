package service

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that already exists
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a token fails verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token is past its expiry
	ErrTokenExpired = errors.New("token expired")
	// ErrRefreshTokenInvalid is returned when a refresh token does not match
	// the stored hash, including after rotation or logout
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")
	// ErrPostNotFound is returned when a post does not exist
	ErrPostNotFound = errors.New("post not found")
	// ErrNotPostOwner is returned when a user modifies a post they do not own
	ErrNotPostOwner = errors.New("not the post owner")
)
