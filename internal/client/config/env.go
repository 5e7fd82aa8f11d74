package config

import "github.com/spf13/viper"

// parseEnv overlays SAFE360_ADMIN_SERVER, SAFE360_ADMIN_TOKEN_FILE and
// SAFE360_ADMIN_CALL_TIMEOUT onto cfg.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if v.IsSet("server") {
		cfg.ServerEndpointAddr = v.GetString("server")
	}
	if v.IsSet("token_file") {
		cfg.TokenFile = v.GetString("token_file")
	}
	if v.IsSet("call_timeout") {
		cfg.CallTimeout = v.GetDuration("call_timeout")
	}
}
