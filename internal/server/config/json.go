package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/flagx"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON configuration file. Durations
// accept strings such as "30m" as well as integer nanoseconds. Fields left
// out of the file keep the value from the previous layer.
type JsonConfig struct {
	EndpointAddrGRPC       string         `json:"endpoint_addr_grpc"`
	MetricsAddr            string         `json:"metrics_addr"`
	StoreBackend           string         `json:"store_backend"`
	StorePath              string         `json:"store_path"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	SessionTokenTTL        timex.Duration `json:"session_token_ttl"`
	ResetTokenTTL          timex.Duration `json:"reset_token_ttl"`
	BcryptCost             int            `json:"bcrypt_cost"`
	PublicBaseURL          string         `json:"public_base_url"`
	ActivityLogCap         int            `json:"activity_log_cap"`
	RateLimitWindow        timex.Duration `json:"rate_limit_window"`
	RateLimitMax           int            `json:"rate_limit_max"`
	AuthRateLimitMax       int            `json:"auth_rate_limit_max"`
	RateLimitSweepInterval timex.Duration `json:"rate_limit_sweep_interval"`
	MailTimeout            timex.Duration `json:"mail_timeout"`
	LogFormat              string         `json:"log_format"`
	LogLevel               string         `json:"log_level"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
	BackupInterval         timex.Duration `json:"backup_interval"`
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

// parseJson loads the file named by -c / -config, if any, onto config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlayString(&config.MetricsAddr, c.MetricsAddr)
	overlayString(&config.StoreBackend, c.StoreBackend)
	overlayString(&config.StorePath, c.StorePath)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.SecretKey, c.SecretKey)
	overlayDuration(&config.SessionTokenTTL, c.SessionTokenTTL)
	overlayDuration(&config.ResetTokenTTL, c.ResetTokenTTL)
	overlayInt(&config.BcryptCost, c.BcryptCost)
	overlayString(&config.PublicBaseURL, c.PublicBaseURL)
	overlayInt(&config.ActivityLogCap, c.ActivityLogCap)
	overlayDuration(&config.RateLimitWindow, c.RateLimitWindow)
	overlayInt(&config.RateLimitMax, c.RateLimitMax)
	overlayInt(&config.AuthRateLimitMax, c.AuthRateLimitMax)
	overlayDuration(&config.RateLimitSweepInterval, c.RateLimitSweepInterval)
	overlayDuration(&config.MailTimeout, c.MailTimeout)
	overlayString(&config.LogFormat, c.LogFormat)
	overlayString(&config.LogLevel, c.LogLevel)
	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlayDuration(&config.BackupInterval, c.BackupInterval)
}
