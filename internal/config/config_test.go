package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.StatusTxTimeout)
	assert.Equal(t, 5*time.Second, cfg.StatusTxMaxWait)
	assert.Equal(t, "token", cfg.CookieName)
	assert.Equal(t, "change-me", cfg.JWTSecret)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STATUS_TX_TIMEOUT", "ten seconds")

	_, err := Load()
	assert.ErrorContains(t, err, "STATUS_TX_TIMEOUT")
}

func TestGoogleEnabled(t *testing.T) {
	cfg := &Config{GoogleClientID: "id"}
	assert.False(t, cfg.GoogleEnabled())
	cfg.GoogleClientSecret = "secret"
	assert.True(t, cfg.GoogleEnabled())
}
