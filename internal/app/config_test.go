package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/openshelf.sqlite", cfg.Database.Path)

	require.Equal(t, "openshelf", cfg.Auth.JWT.Issuer)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.AccessTTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.JWT.RefreshTTL)

	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
	require.Equal(t, 10*time.Second, cfg.Email.SMTP.Timeout)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)

	require.False(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@daily", cfg.Maintenance.Schedule)
	require.Equal(t, 365, cfg.Maintenance.RetentionDays)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9090
  log_level: debug
  allowed_origins:
    - https://library.example.com
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
    database: openshelf
    username: app
    password: hunter2
auth:
  jwt:
    secret: config-secret
    access_token_ttl: 30m
email:
  smtp:
    enabled: true
    host: smtp.example.com
    port: 2525
    from: library@example.com
maintenance:
  enabled: true
  retention_days: 30
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"https://library.example.com"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "config-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.AccessTTL)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, 30, cfg.Maintenance.RetentionDays)

	dbCfg := cfg.Database.DatabaseSettings()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5433, dbCfg.Port)
	require.Equal(t, "openshelf", dbCfg.Name)
	require.Equal(t, "app", dbCfg.User)
	require.Equal(t, "hunter2", dbCfg.Password)

	smtp := cfg.Email.SMTPSettings()
	require.True(t, smtp.Enabled)
	require.Equal(t, "smtp.example.com", smtp.Host)
	require.Equal(t, 2525, smtp.Port)
	require.Equal(t, "library@example.com", smtp.From)

	jwt := cfg.Auth.JWTServiceConfig()
	require.Equal(t, "config-secret", jwt.Secret)
	require.Equal(t, "openshelf", jwt.Issuer)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("OPENSHELF_SERVER_PORT", "7070")
	t.Setenv("OPENSHELF_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}
