// Package config loads runtime configuration for the wallet daemon.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-env, or ./.env) and GREENWALLET_* environment variables.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://holder-api.example.org/v8",
//	  "database_path": "wallet.db",
//	  "credential_renewal_days": 5,
//	  "online_check_interval": "3s",
//	  "foreground_retry_cooldown": "10m",
//	  "event_flows": ["vaccination"]
//	}
//
// The passphrase is read from GREENWALLET_PASSPHRASE only, never from the
// JSON file or the command line.
package config
