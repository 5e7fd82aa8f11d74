package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlays present fields", func(t *testing.T) {
		path := writeTempJSON(t, dir, "full.json", map[string]any{
			"server_endpoint_addr": "www.example:9000",
			"token_file":           "/tmp/tok",
			"call_timeout":         "10s",
		})

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, "www.example:9000", cfg.ServerEndpointAddr)
		assert.Equal(t, "/tmp/tok", cfg.TokenFile)
		assert.Equal(t, 10*time.Second, cfg.CallTimeout)
	})

	t.Run("missing fields keep previous values", func(t *testing.T) {
		path := writeTempJSON(t, dir, "partial.json", map[string]any{
			"call_timeout": 2000000000,
		})

		cfg := &Config{ServerEndpointAddr: "defaults:1234", TokenFile: "tok"}
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, "defaults:1234", cfg.ServerEndpointAddr)
		assert.Equal(t, "tok", cfg.TokenFile)
		assert.Equal(t, 2*time.Second, cfg.CallTimeout)
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		cfg := &Config{ServerEndpointAddr: "defaults:1234"}
		require.NoError(t, parseJson(cfg, ""))
		assert.Equal(t, "defaults:1234", cfg.ServerEndpointAddr)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, bad))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, filepath.Join(dir, "nope.json")))
	})
}
