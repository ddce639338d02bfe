package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SECRET_KEY", "s3cret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lateral")
	t.Setenv("SECRET_KEY", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lateral")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("BASE_URL", "https://directory.example.org/")
	t.Setenv("SESSION_LIFETIME_DAYS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "abc")
	t.Setenv("GOOGLE_REDIRECT_URI", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, 7*24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, "https://directory.example.org", cfg.BaseURL)
	assert.Equal(t, []string{"https://directory.example.org"}, cfg.CORSOrigins)
	assert.Equal(t, "https://directory.example.org/api/auth/google/callback", cfg.Google.RedirectURL)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Monitor.Timeout)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lateral")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("SESSION_LIFETIME_DAYS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.Production())
	assert.True(t, cfg.Google.Configured())
	assert.False(t, cfg.LinkedIn.Configured())
}
