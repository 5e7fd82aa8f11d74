package config

import (
	"flag"
	"os"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string     gRPC bind address (":50051")
//	-m string     metrics/health bind address (":9090")
//	-k string     store backend: file | sqlite | postgres
//	-f string     document file path for the file backend
//	-d string     PostgreSQL DSN for the postgres backend
//	-s string     JWT HMAC secret key
//	-t duration   session token lifetime ("1h")
//	-r duration   reset token lifetime ("30m")
//	-w string     public base URL used in reset and invite links
//	-l string     log level
//	-o string     log format: json | text | zap | zap-dev
//	-u string     S3 access key
//	-p string     S3 secret key
//	-b string     S3 bucket for snapshots (empty disables backups)
//	-g string     S3 region
//	-e string     S3 base endpoint
//
// os.Args is filtered through flagx.FilterArgs first so -c / -env-file and
// flags of other components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-k", "-f", "-d", "-s", "-t", "-r", "-w", "-l", "-o", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for health and metrics")
	fs.StringVar(&config.StoreBackend, "k", config.StoreBackend, "store backend (file|sqlite|postgres)")
	fs.StringVar(&config.StorePath, "f", config.StorePath, "document file path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.SessionTokenTTL, "t", config.SessionTokenTTL, "session token lifetime")
	fs.DurationVar(&config.ResetTokenTTL, "r", config.ResetTokenTTL, "reset token lifetime")
	fs.StringVar(&config.PublicBaseURL, "w", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "o", config.LogFormat, "log format")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
