package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, "fencepost", cfg.Database.Name)
	require.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	require.Equal(t, int64(20000), cfg.Upload.StallMs)
	require.False(t, cfg.Upload.Debug)
	require.Equal(t, 60*time.Second, cfg.Upload.FetchTimeout)
}

func TestLoadConfigEnvOverridesStallWindow(t *testing.T) {
	t.Setenv("UPLOAD_STALL_MS", "5000")
	t.Setenv("UPLOAD_DEBUG", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, int64(5000), cfg.Upload.StallMs)
	require.True(t, cfg.Upload.Debug)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
upload:
  stall_ms: 30000
  fetch_timeout: 10s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, int64(30000), cfg.Upload.StallMs)
	require.Equal(t, 10*time.Second, cfg.Upload.FetchTimeout)
}
