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

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.registrs.example.lv", cfg.Register.BaseURL)
	assert.InDelta(t, 5.0, cfg.Register.RateLimit, 0.001)
	assert.Equal(t, 30, cfg.Register.TimeoutSecs)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "registry.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 60, cfg.Session.TTLMinutes)
	assert.Equal(t, 24, cfg.Cache.ScenarioTTLHours)
	assert.Equal(t, 24, cfg.Cache.ProfileTTLHours)
	assert.Equal(t, "windows-1257", cfg.Sync.Encoding)
	assert.Equal(t, 500, cfg.Sync.BatchSize)
	assert.Equal(t, ".", cfg.Report.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
register:
  base_url: https://register.test
  api_key: secret
store:
  driver: postgres
  database_url: postgres://localhost/registry
log:
  level: debug
  format: console
server:
  port: 9090
session:
  ttl_minutes: 15
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://register.test", cfg.Register.BaseURL)
	assert.Equal(t, "secret", cfg.Register.APIKey)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Session.TTLMinutes)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Sync.BatchSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("REGISTRY_STORE_DRIVER", "postgres")
	t.Setenv("REGISTRY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("REGISTRY_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestTTLHelpers(t *testing.T) {
	cfg := Config{
		Session: SessionConfig{TTLMinutes: 45},
		Cache:   CacheConfig{ScenarioTTLHours: 6, ProfileTTLHours: 12},
	}
	assert.Equal(t, 45*time.Minute, cfg.Session.SessionTTL())
	assert.Equal(t, 6*time.Hour, cfg.Cache.ScenarioTTL())
	assert.Equal(t, 12*time.Hour, cfg.Cache.ProfileTTL())
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Register.BaseURL = "https://register.test"
	cfg.Register.RateLimit = 5
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "registry.db"
	cfg.Server.Port = 8080
	cfg.Session.TTLMinutes = 60
	cfg.Sync.FTPURL = "ftp://open.test/dump.csv"
	cfg.Sync.BatchSize = 500
	cfg.Report.OutputDir = "."
	return cfg
}

func TestValidateCLI(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("cli"))
}

func TestValidateMissingBaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Register.BaseURL = ""

	err := cfg.Validate("cli")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "register.base_url is required")
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("cli")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")

	cfg.Store.Driver = "postgres"
	err = cfg.Validate("cli")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/registry"
	assert.NoError(t, cfg.Validate("cli"))
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 8080
	cfg.Session.TTLMinutes = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session.ttl_minutes must be > 0")
}

func TestValidateSync(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("sync"))

	cfg.Sync.FTPURL = ""
	err := cfg.Validate("sync")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sync.ftp_url is required")
}

func TestValidateReport(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("report"))

	cfg.Report.OutputDir = ""
	err := cfg.Validate("report")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report.output_dir is required")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
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
