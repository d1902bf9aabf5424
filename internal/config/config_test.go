package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  mode: release
database:
  driver: sqlite
  path: /tmp/fit.db
redis:
  enabled: true
  weekly_ttl_seconds: 60
jwt:
  secret: from-file
  expire_hours: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/fit.db", cfg.Database.Path)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.WeeklyTTL())
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 2, cfg.JWT.ExpireHours)

	// untouched sections keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "logs", cfg.Log.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: from-file\nserver:\n  port: 9000\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-only")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Redis.WeeklyTTL())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "server:\n  port: 9000\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "fit", Password: "pw", DBName: "fittracker", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=fit password=pw dbname=fittracker sslmode=disable", db.DSN())
}
