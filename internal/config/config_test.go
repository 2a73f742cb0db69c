package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "local", cfg.Storage.Driver)
	require.Equal(t, 5, cfg.Notification.MaxAttempts)
	require.Same(t, cfg, GlobalConfig)
}

func TestLoad_FileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: \"9090\"\nzoho:\n  timeout_seconds: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 3*time.Second, cfg.ZohoTimeout())
	require.Equal(t, "https://www.zohoapis.in/books/v3", cfg.Zoho.APIBaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("REDIS_URL", "redis://:pw@cache:6380/2")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Server.Port)
	require.Equal(t, "from-env", cfg.JWT.Secret)
	require.True(t, cfg.Mail.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Mail.Host)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "cache:6380", cfg.Redis.Addr)
	require.Equal(t, "pw", cfg.Redis.Password)
	require.Equal(t, 2, cfg.Redis.DB)
}

func TestZohoTimeout_FallsBackWhenUnset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Zoho.TimeoutSeconds = 0
	require.Equal(t, 15*time.Second, cfg.ZohoTimeout())
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.App.Name = "Saved"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Saved", loaded.App.Name)
}
