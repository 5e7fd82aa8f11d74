package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	TokenFile          string         `json:"token_file"`
	CallTimeout        timex.Duration `json:"call_timeout"`
}

// parseJson overlays the fields present in the file at path onto cfg.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	if jc.CallTimeout.Duration != 0 {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	return nil
}
