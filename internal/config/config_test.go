package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		DatabaseURL:        "postgres://localhost/ga4",
		CredentialStore:    StorePostgres,
		HTTPTimeout:        DefaultHTTPTimeout,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.GoogleClientID = "" },
			wantErr: "GOOGLE_CLIENT_ID environment variable is not set or is using placeholder value",
		},
		{
			name:    "placeholder client secret",
			mutate:  func(c *Config) { c.GoogleClientSecret = "YOUR_GOOGLE_CLIENT_SECRET" },
			wantErr: "GOOGLE_CLIENT_SECRET",
		},
		{
			name:    "placeholder database url",
			mutate:  func(c *Config) { c.DatabaseURL = "YOUR_DATABASE_URL" },
			wantErr: "DATABASE_URL",
		},
		{
			name: "memory store needs no database",
			mutate: func(c *Config) {
				c.CredentialStore = StoreMemory
				c.DatabaseURL = ""
			},
		},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.CredentialStore = "redis" },
			wantErr: `CREDENTIAL_STORE must be "postgres" or "memory", got "redis"`,
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = 0 },
			wantErr: "HTTP_TIMEOUT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	err := Config{CredentialStore: StorePostgres, HTTPTimeout: time.Second}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvGoogleClientID)
	assert.Contains(t, err.Error(), EnvGoogleClientSecret)
	assert.Contains(t, err.Error(), EnvDatabaseURL)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvGoogleClientID, "id")
	t.Setenv(EnvGoogleClientSecret, "secret")
	t.Setenv(EnvCredentialStore, StoreMemory)
	t.Setenv(EnvCredentialSeedFile, "seed.json")
	t.Setenv(EnvHTTPTimeout, "5s")
	t.Setenv(EnvDatabaseURL, "")

	cfg := FromEnv()
	assert.Equal(t, "id", cfg.GoogleClientID)
	assert.Equal(t, "secret", cfg.GoogleClientSecret)
	assert.Equal(t, StoreMemory, cfg.CredentialStore)
	assert.Equal(t, "seed.json", cfg.CredentialSeedFile)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvCredentialStore, "")
	t.Setenv(EnvHTTPTimeout, "not-a-duration")

	cfg := FromEnv()
	assert.Equal(t, StorePostgres, cfg.CredentialStore)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(""))
	})

	t.Run("loads without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("GA4MCP_TEST_A=from-file\nGA4MCP_TEST_B=from-file\n"), 0o600))

		t.Setenv("GA4MCP_TEST_A", "from-env")
		t.Setenv("GA4MCP_TEST_B", "")
		require.NoError(t, os.Unsetenv("GA4MCP_TEST_B"))

		require.NoError(t, LoadEnvFile(path))
		assert.Equal(t, "from-env", os.Getenv("GA4MCP_TEST_A"))
		assert.Equal(t, "from-file", os.Getenv("GA4MCP_TEST_B"))
	})
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GA4MCP_TEST_BOOL", "true")
	t.Setenv("GA4MCP_TEST_BAD_BOOL", "maybe")
	t.Setenv("GA4MCP_TEST_FLOAT", "0.25")

	assert.True(t, Bool("GA4MCP_TEST_BOOL", false))
	assert.True(t, Bool("GA4MCP_TEST_BAD_BOOL", true))
	assert.False(t, Bool("GA4MCP_TEST_UNSET", false))
	assert.InDelta(t, 0.25, Float("GA4MCP_TEST_FLOAT", 1), 1e-9)
	assert.InDelta(t, 1.0, Float("GA4MCP_TEST_UNSET", 1), 1e-9)
	assert.Equal(t, "fallback", String("GA4MCP_TEST_UNSET", "fallback"))
}
