package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Email: "alice@example.com", Password: "secret1", Name: "Alice"}

	t.Run("valid", func(t *testing.T) {
		ok, msg := valid.Validate()
		assert.True(t, ok, msg)
	})

	t.Run("bad email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		ok, _ := req.Validate()
		assert.False(t, ok)
	})

	t.Run("short password", func(t *testing.T) {
		req := valid
		req.Password = "12345"
		ok, _ := req.Validate()
		assert.False(t, ok)
	})

	t.Run("short name", func(t *testing.T) {
		req := valid
		req.Name = "Al"
		ok, _ := req.Validate()
		assert.False(t, ok)
	})
}

func TestCreatePostRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := CreatePostRequest{Title: "Hello", Content: "World content"}
		ok, msg := req.Validate()
		assert.True(t, ok, msg)
	})

	t.Run("short title", func(t *testing.T) {
		req := CreatePostRequest{Title: "Hi", Content: "World content"}
		ok, _ := req.Validate()
		assert.False(t, ok)
	})

	t.Run("short content", func(t *testing.T) {
		req := CreatePostRequest{Title: "Hello", Content: "Hi"}
		ok, _ := req.Validate()
		assert.False(t, ok)
	})
}

func TestUpdatePostRequestValidate(t *testing.T) {
	t.Run("empty fields allowed", func(t *testing.T) {
		req := UpdatePostRequest{}
		ok, _ := req.Validate()
		assert.True(t, ok)
	})

	t.Run("present fields checked", func(t *testing.T) {
		req := UpdatePostRequest{Title: "Hi"}
		ok, _ := req.Validate()
		assert.False(t, ok)
	})
}

func TestListPostsQuerySetDefaults(t *testing.T) {
	t.Run("zero values", func(t *testing.T) {
		q := ListPostsQuery{}
		q.SetDefaults()
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, 10, q.Limit)
	})

	t.Run("limit capped", func(t *testing.T) {
		q := ListPostsQuery{Page: 2, Limit: 500}
		q.SetDefaults()
		assert.Equal(t, 2, q.Page)
		assert.Equal(t, 100, q.Limit)
	})
}
