package config

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain guards the config package tests against running with a
// production environment loaded.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env == "production" {
		fmt.Fprintln(os.Stderr, "SAFETY CHECK FAILED: config tests must not run with GO_ENV=production")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func validConfig() *Config {
	return &Config{
		Port:         "8080",
		GoEnv:        "test",
		StoreBackend: "memory",
	}
}

func TestValidateAcceptsKnownBackends(t *testing.T) {
	for _, backend := range []string{"memory", "redis"} {
		cfg := validConfig()
		cfg.StoreBackend = backend
		assert.NoError(t, cfg.Validate(), "backend %s", backend)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StoreBackend = "etcd"
	assert.Error(t, cfg.Validate())
}

func TestValidateDatabaseBackendNeedsTarget(t *testing.T) {
	cfg := validConfig()
	cfg.StoreBackend = "database"
	assert.Error(t, cfg.Validate())

	cfg.SQLitePath = "roadcall.db"
	assert.NoError(t, cfg.Validate())

	cfg.SQLitePath = ""
	cfg.DatabaseURL = "postgres://localhost/roadcall"
	assert.NoError(t, cfg.Validate())
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.GoEnv = "production"
	assert.Error(t, cfg.Validate(), "production needs JWT_SECRET")

	cfg.JWTSecret = "secret"
	assert.Error(t, cfg.Validate(), "production needs ROOT_ADMIN_PASSWORD")

	cfg.RootAdminPassword = "root-pass"
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentPredicates(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())

	cfg.GoEnv = "production"
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvDefault(t *testing.T) {
	key := "ROADCALL_CONFIG_TEST_KEY"
	require.NoError(t, os.Unsetenv(key))
	assert.Equal(t, "fallback", getEnv(key, "fallback"))

	t.Setenv(key, "set")
	assert.Equal(t, "set", getEnv(key, "fallback"))
}

func TestSetAndGetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := validConfig()
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}
