// Package config provides 12-factor configuration management for the shell.
//
// Configuration is loaded from environment variables with sensible defaults.
// The packaged application manifest is configured separately from runtime
// settings: MANIFEST points at the packaged configuration file consumed by
// the runtime context generator.
//
// Environment Variables:
//   - PORT, HOST
//   - MANIFEST, DATA_DIR, DEV
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
