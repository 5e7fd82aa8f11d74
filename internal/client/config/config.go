package config

import (
	"os"
	"path/filepath"
	"time"
)

const envPrefix = "SAFE360_ADMIN"

// Config holds runtime settings for the vaultadm CLI.
type Config struct {
	ServerEndpointAddr string
	TokenFile          string
	CallTimeout        time.Duration
}

// LoadDefaults populates c with defaults. The token file lives in the
// user's config directory, falling back to the working directory when the
// platform has none.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.TokenFile = defaultTokenFile()
	c.CallTimeout = 15 * time.Second
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".safe360", "token")
	}
	return filepath.Join(dir, "safe360", "token")
}

// LoadConfig applies defaults, SAFE360_ADMIN_* environment variables and the
// JSON file at jsonPath, when non-empty, in that order. Command-line flags
// are applied afterwards by the caller.
func LoadConfig(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	return cfg, nil
}
