// Package config loads the server and CLI settings.
//
// Settings come from an optional YAML file named by CONFIG_PATH; environment
// variables override the file, and env-default fills whatever neither sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	// Europe/Paris must resolve in minimal containers without zoneinfo.
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

const minSecretLength = 16

type Config struct {
	Env       string    `yaml:"env" env:"BONVAN_ENV" env-default:"local"`
	HTTP      HTTP      `yaml:"http"`
	Storage   Storage   `yaml:"storage"`
	Auth      Auth      `yaml:"auth"`
	Dev       Dev       `yaml:"dev"`
	Dashboard Dashboard `yaml:"dashboard"`
}

type HTTP struct {
	Address         string        `yaml:"address" env:"BONVAN_HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"BONVAN_HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"BONVAN_HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"BONVAN_HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BONVAN_HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool `yaml:"secure_cookie" env:"BONVAN_HTTP_SECURE_COOKIE" env-default:"false"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"BONVAN_STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"BONVAN_SQLITE_PATH" env-default:"data/bonvan.db"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Addr        string        `yaml:"addr" env:"BONVAN_REDIS_ADDR" env-default:"localhost:6379"`
	Username    string        `yaml:"username" env:"BONVAN_REDIS_USERNAME"`
	Password    string        `yaml:"password" env:"BONVAN_REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"BONVAN_REDIS_DB" env-default:"0"`
	MaxRetries  int           `yaml:"max_retries" env:"BONVAN_REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"BONVAN_REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env:"BONVAN_REDIS_TIMEOUT" env-default:"3s"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"BONVAN_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"BONVAN_TOKEN_TTL" env-default:"168h"`
	// PasswordScheme hashes new passwords: sha256 (compatible with the
	// records the browser app wrote) or bcrypt.
	PasswordScheme string `yaml:"password_scheme" env:"BONVAN_PASSWORD_SCHEME" env-default:"sha256"`
	BcryptCost     int    `yaml:"bcrypt_cost" env:"BONVAN_BCRYPT_COST" env-default:"12"`
	// Sign-in attempts allowed per second, and the burst above that rate.
	SignInRate  float64 `yaml:"signin_rate" env:"BONVAN_SIGNIN_RATE" env-default:"1"`
	SignInBurst int     `yaml:"signin_burst" env:"BONVAN_SIGNIN_BURST" env-default:"5"`
}

// Dev holds development switches. All default to off.
type Dev struct {
	DisableAuth       bool `yaml:"disable_auth" env:"BONVAN_DEV_DISABLE_AUTH" env-default:"false"`
	ForceOnboarding   bool `yaml:"force_onboarding" env:"BONVAN_DEV_FORCE_ONBOARDING" env-default:"false"`
	HonorStoredBypass bool `yaml:"honor_stored_bypass" env:"BONVAN_DEV_HONOR_STORED_BYPASS" env-default:"false"`
}

type Dashboard struct {
	// Seed drives the simulated figures; 0 picks a random seed at startup.
	Seed     uint64 `yaml:"seed" env:"BONVAN_DASHBOARD_SEED" env-default:"0"`
	Timezone string `yaml:"timezone" env:"BONVAN_DASHBOARD_TIMEZONE" env-default:"Europe/Paris"`
}

// Load reads the file named by CONFIG_PATH, if set, then the environment.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: env must be one of local, dev, prod, got %q", c.Env)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("config: storage.sqlite_path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("config: storage.redis.addr is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: storage.driver must be one of sqlite, redis, memory, got %q", c.Storage.Driver)
	}

	// Only a local run may start without a secret; the server then makes one up.
	if c.Auth.JWTSecret == "" && c.Env != EnvLocal {
		return errors.New("config: auth.jwt_secret is required outside the local env")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("config: auth.jwt_secret must be at least %d characters", minSecretLength)
	}
	if c.Auth.SignInRate <= 0 || c.Auth.SignInBurst < 1 {
		return errors.New("config: auth.signin_rate and auth.signin_burst must be positive")
	}

	if c.Env == EnvProd && (c.Dev.DisableAuth || c.Dev.HonorStoredBypass) {
		return errors.New("config: dev auth switches are not allowed in prod")
	}

	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("config: dashboard.timezone: %w", err)
	}
	return nil
}

// Location returns the dashboard time zone. Validate has checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
