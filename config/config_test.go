package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "elearning")
	t.Setenv("ACCESS_TOKEN", "access-secret")
	t.Setenv("REFRESH_TOKEN", "refresh-secret")
	t.Setenv("ACTIVATION_SECRET", "activation-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ":8000", cfg.HTTPAddress())
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.Tokens.AccessTTL)
	assert.Equal(t, 3*24*time.Hour, cfg.Tokens.RefreshTTL)
	assert.Equal(t, 5*time.Minute, cfg.Tokens.ActivationTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Tokens.SessionTTL)
	assert.False(t, cfg.Cookies.Secure)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Storage.Enabled())
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "oops")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.Tokens.AccessTTL)
	assert.Equal(t, 3*24*time.Hour, cfg.Tokens.RefreshTTL, "invalid value falls back to default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Cookies.Secure)
	assert.Equal(t, "admin@example.com", cfg.Admin.Email)
	assert.True(t, cfg.Admin.Enabled())
}

func TestLoad_MissingSecrets(t *testing.T) {
	for _, name := range []string{"MONGODB_URI", "DATABASE_NAME", "ACCESS_TOKEN", "REFRESH_TOKEN", "ACTIVATION_SECRET"} {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoad_SameAccessAndRefreshSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN", "access-secret")

	_, err := Load()
	require.Error(t, err)
}
