package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "3030", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "sellit", cfg.Mongo.Database)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
}

func TestLoadEnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("SERVER_PORT", "4040")
	t.Setenv("MONGODB_DATABASE", "sellit_test")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "4040", cfg.Server.Port)
	assert.Equal(t, "sellit_test", cfg.Mongo.Database)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"5050\"\njwt:\n  expiry_hours: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5050", cfg.Server.Port)
	assert.Equal(t, 4*time.Hour, cfg.TokenExpiry)
}
