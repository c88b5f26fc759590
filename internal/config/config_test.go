package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TORVI_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "torvi.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.AnonymousTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 100, cfg.BroadcastBuffer)
	assert.Equal(t, time.Minute, cfg.CleanupInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TORVI_JWT_SECRET", "secret")
	t.Setenv("TORVI_HEARTBEAT_INTERVAL", "5s")
	t.Setenv("DISCORD_KEY", "discord-key")
	t.Setenv("GOOGLE_CALLBACK_URL", "http://localhost/auth/google/callback")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, "discord-key", cfg.Discord.Key)
	assert.Equal(t, "http://localhost/auth/google/callback", cfg.Google.CallbackURL)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("TORVI_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
