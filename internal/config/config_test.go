package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ALGOTUTOR_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, 2*time.Minute, cfg.UploadTimeout)
	require.Equal(t, 20, cfg.UploadMaxSizeMB)
	require.Equal(t, "algotutor", cfg.EventsChannel)
	require.Equal(t, "en", cfg.DefaultLocale)
	require.False(t, cfg.CloudinaryConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALGOTUTOR_JWT_SECRET", "secret")
	t.Setenv("ALGOTUTOR_APP_PORT", ":9090")
	t.Setenv("ALGOTUTOR_SESSION_TTL", "30m")
	t.Setenv("ALGOTUTOR_UPLOAD_MAX_SIZE_MB", "5")
	t.Setenv("ALGOTUTOR_I18N_DEFAULT_LOCALE", "FR")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 5, cfg.UploadMaxSizeMB)
	require.Equal(t, "fr", cfg.DefaultLocale)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("ALGOTUTOR_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("ALGOTUTOR_JWT_SECRET", "secret")
	t.Setenv("ALGOTUTOR_SESSION_TTL", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "session.ttl")

	t.Setenv("ALGOTUTOR_SESSION_TTL", "1h")
	t.Setenv("ALGOTUTOR_ADMIN_EMAIL", "root@algotutor.test")
	_, err = Load()
	require.ErrorContains(t, err, "admin password")
}
