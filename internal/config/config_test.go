package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.Path)
	assert.Equal(t, "de", cfg.Google.Language)
	assert.Equal(t, "Wien, Austria", cfg.Discovery.DefaultLocation)
	assert.Equal(t, 2000, cfg.Discovery.QueryDelayMS)
	assert.Equal(t, 10, cfg.Discovery.WebsiteTimeoutSecs)
	assert.InDelta(t, 10.0, cfg.Discovery.RateLimit, 0.001)
	assert.False(t, cfg.Discovery.ParallelDetails)
	assert.Equal(t, 4, cfg.Discovery.DetailWorkers)
	assert.Contains(t, cfg.Discovery.TargetLocations, "korneuburg")
	assert.Contains(t, cfg.Discovery.HighValueTypes, "rechtsanwalt")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
server:
  port: 9090
discovery:
  query_delay_ms: 500
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Discovery.QueryDelayMS)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Discovery.WebsiteTimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADGEN_STORE_DRIVER", "postgres")
	t.Setenv("LEADGEN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("LEADGEN_GOOGLE_KEY", "test-key")
	t.Setenv("LEADGEN_STORE_DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("LEADGEN_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Google.Key)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadEnvBindsKeysWithEmptyDefaults(t *testing.T) {
	chTempDir(t)

	// The credential keys have no meaningful default; they must still bind
	// from the environment so the remedy named by Validate actually works.
	t.Setenv("LEADGEN_GOOGLE_KEY", "env-only-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-only-key", cfg.Google.Key)
	assert.NoError(t, cfg.Validate("discovery"))
}

func TestDiscoveryDurations(t *testing.T) {
	d := DiscoveryConfig{QueryDelayMS: 1500, WebsiteTimeoutSecs: 8}
	assert.Equal(t, 1500*time.Millisecond, d.QueryDelay())
	assert.Equal(t, 8*time.Second, d.WebsiteTimeout())
}

func TestValidateDiscovery_MissingKey(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "sqlite"}}
	err := cfg.Validate("discovery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.key")
}

func TestValidateDiscovery_KeyPresent(t *testing.T) {
	cfg := &Config{
		Store:  StoreConfig{Driver: "sqlite"},
		Google: GoogleConfig{Key: "k"},
	}
	assert.NoError(t, cfg.Validate("discovery"))
}

func TestValidateStore_PostgresNeedsURL(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "postgres"}}
	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")

	cfg.Store.DatabaseURL = "postgres://localhost/leads"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "mysql"}}
	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
