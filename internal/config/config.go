package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Defaults
const (
	DefaultHTTPTimeout = 60 * time.Second
	DefaultEnvFile     = ".env"
)

// Environment variable names.
const (
	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvGoogleTokenURL     = "GOOGLE_TOKEN_URL"
	EnvAnalyticsEndpoint  = "GA4_API_ENDPOINT"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvCredentialStore    = "CREDENTIAL_STORE"
	EnvCredentialSeedFile = "CREDENTIAL_SEED_FILE"
	EnvHTTPTimeout        = "HTTP_TIMEOUT"
)

// placeholders maps a variable to the value shipped in example env files.
var placeholders = map[string]string{
	EnvGoogleClientID:     "YOUR_GOOGLE_CLIENT_ID",
	EnvGoogleClientSecret: "YOUR_GOOGLE_CLIENT_SECRET",
	EnvDatabaseURL:        "YOUR_DATABASE_URL",
}

// Config holds everything needed to reach Google and the credential store.
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string

	// TokenURL overrides the Google OAuth token endpoint (tests, proxies).
	TokenURL string

	// AnalyticsEndpoint overrides the GA4 Data API base URL.
	AnalyticsEndpoint string

	// DatabaseURL is the Postgres connection string for the postgres store.
	DatabaseURL string

	// CredentialStore is StorePostgres or StoreMemory.
	CredentialStore string

	// CredentialSeedFile is a JSON file of connections loaded by the memory store.
	CredentialSeedFile string

	// HTTPTimeout bounds outbound calls to Google.
	HTTPTimeout time.Duration
}

// LoadEnvFile loads variables from path without overriding variables that
// are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from the current environment.
func FromEnv() Config {
	return Config{
		GoogleClientID:     String(EnvGoogleClientID, ""),
		GoogleClientSecret: String(EnvGoogleClientSecret, ""),
		TokenURL:           String(EnvGoogleTokenURL, ""),
		AnalyticsEndpoint:  String(EnvAnalyticsEndpoint, ""),
		DatabaseURL:        String(EnvDatabaseURL, ""),
		CredentialStore:    String(EnvCredentialStore, StorePostgres),
		CredentialSeedFile: String(EnvCredentialSeedFile, ""),
		HTTPTimeout:        Duration(EnvHTTPTimeout, DefaultHTTPTimeout),
	}
}

// Validate reports every missing or placeholder setting at once.
func (c Config) Validate() error {
	var errs []error

	errs = append(errs, required(EnvGoogleClientID, c.GoogleClientID))
	errs = append(errs, required(EnvGoogleClientSecret, c.GoogleClientSecret))

	switch c.CredentialStore {
	case StorePostgres:
		errs = append(errs, required(EnvDatabaseURL, c.DatabaseURL))
	case StoreMemory:
		// An empty seed file is allowed and yields an empty store.
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvCredentialStore, StorePostgres, StoreMemory, c.CredentialStore))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", EnvHTTPTimeout, c.HTTPTimeout))
	}

	return errors.Join(errs...)
}

func required(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" || value == placeholders[key] {
		return fmt.Errorf("%s environment variable is not set or is using placeholder value", key)
	}
	return nil
}
