// Package config loads the server configuration from the process environment.
//
// Values are read from environment variables after an optional .env file
// has been loaded with godotenv. Command line flags in cmd override the
// loaded values. Validate rejects empty and placeholder credentials so a
// copied example .env fails at startup instead of at the first tool call.
package config
