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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "data/bonvan.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "sha256", cfg.Auth.PasswordScheme)
	assert.Equal(t, 5, cfg.Auth.SignInBurst)
	assert.False(t, cfg.Dev.DisableAuth)
	assert.False(t, cfg.Dev.HonorStoredBypass)
	assert.Equal(t, "Europe/Paris", cfg.Dashboard.Timezone)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
env: dev
http:
  address: ":9090"
storage:
  driver: redis
  redis:
    addr: "redis:6379"
    db: 2
auth:
  jwt_secret: "a-very-long-file-secret"
  token_ttl: 24h
dev:
  force_onboarding: true
dashboard:
  seed: 42
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("BONVAN_HTTP_ADDRESS", ":7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, ":7070", cfg.HTTP.Address, "env overrides the file")
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, 3, cfg.Storage.Redis.MaxRetries, "defaults fill what the file omits")
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Dev.ForceOnboarding)
	assert.EqualValues(t, 42, cfg.Dashboard.Seed)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:       EnvDev,
			Storage:   Storage{Driver: DriverMemory},
			Auth:      Auth{JWTSecret: "0123456789abcdef", SignInRate: 1, SignInBurst: 1},
			Dashboard: Dashboard{Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Driver = DriverSQLite }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Driver = DriverRedis }, wantErr: true},
		{name: "missing secret outside local", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "missing secret in local", mutate: func(c *Config) { c.Env = EnvLocal; c.Auth.JWTSecret = "" }},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "zero rate", mutate: func(c *Config) { c.Auth.SignInRate = 0 }, wantErr: true},
		{name: "bypass in prod", mutate: func(c *Config) { c.Env = EnvProd; c.Dev.HonorStoredBypass = true }, wantErr: true},
		{name: "force onboarding in prod", mutate: func(c *Config) { c.Env = EnvProd; c.Dev.ForceOnboarding = true }},
		{name: "bad timezone", mutate: func(c *Config) { c.Dashboard.Timezone = "Mars/Olympus" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
