package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env          string
	Addr         string
	PublicURL    *url.URL
	DBDSN        string
	DBMigrate    bool
	CookieSecret string
	SessionTTL   time.Duration
	LogLevel     string

	// MaxRecordsPerUser caps saved score sheets per account; 0 disables it.
	MaxRecordsPerUser int
	MetricsEnabled    bool

	GoogleClientID string
	AppleServiceID string
}

// Load reads the process environment, after merging an optional .env file
// and an optional YAML file underneath it.
func Load() (Config, error) {
	envFile := os.Getenv("APP_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadDotEnvFile(envFile, os.Setenv, os.Getenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("APP_ENV_FILE: %w", err)
	}

	getenv := os.Getenv
	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		file, err := loadYAMLFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("APP_CONFIG_FILE: %w", err)
		}
		getenv = layered(os.Getenv, file)
	}
	return LoadFromEnv(getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:            getenv("APP_ENV"),
		Addr:           getenv("APP_ADDR"),
		DBDSN:          getenv("APP_DB_DSN"),
		LogLevel:       getenv("APP_LOG_LEVEL"),
		CookieSecret:   getenv("APP_COOKIE_SECRET"),
		GoogleClientID: strings.TrimSpace(getenv("APP_GOOGLE_CLIENT_ID")),
		AppleServiceID: strings.TrimSpace(getenv("APP_APPLE_SERVICE_ID")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return Config{}, errors.New("APP_LOG_LEVEL: must be one of debug, info, warn, error")
	}

	if raw := getenv("APP_PUBLIC_URL"); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	cfg.SessionTTL = 30 * 24 * time.Hour
	if raw := getenv("APP_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_SESSION_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_SESSION_TTL: must be > 0")
		}
		cfg.SessionTTL = ttl
	}

	cfg.MaxRecordsPerUser = 500
	if raw := getenv("APP_MAX_RECORDS_PER_USER"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, errors.New("APP_MAX_RECORDS_PER_USER: must be a non-negative integer")
		}
		cfg.MaxRecordsPerUser = n
	}

	var err error
	if cfg.DBMigrate, err = parseBool(getenv, "APP_DB_MIGRATE", false); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = parseBool(getenv, "APP_METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CookieSecret) < 32 {
			return Config{}, errors.New("APP_COOKIE_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: must be a boolean", key)
	}
	return v, nil
}
