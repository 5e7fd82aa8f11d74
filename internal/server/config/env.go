package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "SAFE360"
	defaultEnvFile = ".env"
)

// loadEnvFile exports variables from a dotenv file without overriding ones
// already present in the process environment. The default .env is optional;
// a file named with -env-file must exist.
func loadEnvFile() {
	path := flagx.EnvFileFlag()
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays SAFE360_* environment variables (for example
// SAFE360_SECRET_KEY or SAFE360_SESSION_TOKEN_TTL=2h) onto config.
func parseEnv(config *Config) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	setString("endpoint_addr_grpc", &config.EndpointAddrGRPC)
	setString("metrics_addr", &config.MetricsAddr)
	setString("store_backend", &config.StoreBackend)
	setString("store_path", &config.StorePath)
	setString("database_dsn", &config.DatabaseDSN)
	setString("secret_key", &config.SecretKey)
	setString("public_base_url", &config.PublicBaseURL)
	setString("log_format", &config.LogFormat)
	setString("log_level", &config.LogLevel)
	setString("s3_root_user", &config.S3RootUser)
	setString("s3_root_password", &config.S3RootPassword)
	setString("s3_bucket", &config.S3Bucket)
	setString("s3_region", &config.S3Region)
	setString("s3_base_endpoint", &config.S3BaseEndpoint)

	setInt("bcrypt_cost", &config.BcryptCost)
	setInt("activity_log_cap", &config.ActivityLogCap)
	setInt("rate_limit_max", &config.RateLimitMax)
	setInt("auth_rate_limit_max", &config.AuthRateLimitMax)

	for key, dst := range map[string]*time.Duration{
		"session_token_ttl":         &config.SessionTokenTTL,
		"reset_token_ttl":           &config.ResetTokenTTL,
		"rate_limit_window":         &config.RateLimitWindow,
		"rate_limit_sweep_interval": &config.RateLimitSweepInterval,
		"mail_timeout":              &config.MailTimeout,
		"backup_interval":           &config.BackupInterval,
	} {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}
}
