package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  database: plctester
  user: plctester
  password: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:102", cfg.PLC.Address)
	assert.Equal(t, 0, cfg.PLC.Rack)
	assert.Equal(t, 1, cfg.PLC.Slot)
	assert.Equal(t, 5*time.Second, cfg.PLC.Timeout)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.False(t, cfg.Runner.StopOnError)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9090
plc:
  address: "10.0.0.5:102"
  rack: 0
  slot: 2
  timeout: 10s
runner:
  stop_on_error: true
database:
  host: db
  port: 5432
  database: plctester
  user: u
  password: p
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "10.0.0.5:102", cfg.PLC.Address)
	assert.Equal(t, 2, cfg.PLC.Slot)
	assert.Equal(t, 10*time.Second, cfg.PLC.Timeout)
	assert.True(t, cfg.Runner.StopOnError)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432,
		Database: "plctester", User: "app", Password: "pw",
	}
	assert.Equal(t, "postgres://app:pw@localhost:5432/plctester?sslmode=disable", db.DSN())
}

func TestGetJWTSecret(t *testing.T) {
	a := AuthConfig{JWTSecretEnv: "PLCTESTER_TEST_JWT_SECRET"}

	t.Setenv("PLCTESTER_TEST_JWT_SECRET", "from-env")
	assert.Equal(t, "from-env", a.GetJWTSecret())

	t.Setenv("PLCTESTER_TEST_JWT_SECRET", "")
	assert.Equal(t, "dev-secret-change-in-production-min-32-chars", a.GetJWTSecret())
}
