// Package config loads runtime configuration for the vaultadm CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. SAFE360_ADMIN_SERVER, SAFE360_ADMIN_TOKEN_FILE and
//     SAFE360_ADMIN_CALL_TIMEOUT.
//  3. An optional JSON file passed with --config.
//  4. Command-line flags, bound by the cli package.
//
// JSON durations accept strings like "15s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "vault.internal:50051",
//	  "token_file": "/home/ops/.safe360/token",
//	  "call_timeout": "15s"
//	}
package config
