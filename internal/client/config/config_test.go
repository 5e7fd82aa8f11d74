package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 15*time.Second, c.CallTimeout)
	assert.True(t, strings.HasSuffix(c.TokenFile, filepath.Join("safe360", "token")))
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SAFE360_ADMIN_SERVER", "vault.internal:6000")
	t.Setenv("SAFE360_ADMIN_CALL_TIMEOUT", "3s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "vault.internal:6000", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.CallTimeout)
}

func TestLoadConfig_JSONOverridesEnv(t *testing.T) {
	t.Setenv("SAFE360_ADMIN_SERVER", "from-env:1")
	path := writeTempJSON(t, "", "", map[string]any{
		"server_endpoint_addr": "from-json:2",
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-json:2", cfg.ServerEndpointAddr)
}
