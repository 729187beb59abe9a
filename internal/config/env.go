package config

import (
	"os"
	"strconv"
	"time"
)

// String returns the value of an environment variable or defaultValue
// when it is unset or empty.
func String(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Bool returns the boolean value of an environment variable. Unparsable
// values fall back to defaultValue.
func Bool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Float returns the float64 value of an environment variable. Unparsable
// values fall back to defaultValue.
func Float(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Duration reads a Go duration string such as "30s". Unparsable values
// fall back to defaultValue.
func Duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
