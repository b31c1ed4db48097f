package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "blog-backend", cfg.App.Name)
	assert.Equal(t, 1612, cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.JWT.BcryptCost)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.OTel.Enabled)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App: AppConfig{Name: "blog-backend", Environment: "development"},
			Server: ServerConfig{
				Port: 1612,
			},
			JWT: JWTConfig{
				AccessSecret:  "access-secret",
				RefreshSecret: "refresh-secret",
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("identical secrets rejected", func(t *testing.T) {
		cfg := base()
		cfg.JWT.RefreshSecret = cfg.JWT.AccessSecret
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing secret rejected", func(t *testing.T) {
		cfg := base()
		cfg.JWT.AccessSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("default secrets rejected in production", func(t *testing.T) {
		cfg := base()
		cfg.App.Environment = "production"
		cfg.JWT.AccessSecret = "access-secret-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid port rejected", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})
}
