package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// loadDotEnvFile applies the KEY=VALUE pairs of a dotenv file. Keys that
// already have a value are left alone and empty values are skipped.
func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := values[key]
		if value == "" || getenv(key) != "" {
			continue
		}
		if err := setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// fileConfig is the YAML layout of APP_CONFIG_FILE. Each field maps onto one
// environment key.
type fileConfig struct {
	Env       string `yaml:"env"`
	Addr      string `yaml:"addr"`
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`

	Database struct {
		DSN     string `yaml:"dsn"`
		Migrate string `yaml:"migrate"`
	} `yaml:"database"`

	Session struct {
		CookieSecret string `yaml:"cookie_secret"`
		TTL          string `yaml:"ttl"`
	} `yaml:"session"`

	Limits struct {
		MaxRecordsPerUser string `yaml:"max_records_per_user"`
	} `yaml:"limits"`

	Metrics struct {
		Enabled string `yaml:"enabled"`
	} `yaml:"metrics"`

	Identity struct {
		GoogleClientID string `yaml:"google_client_id"`
		AppleServiceID string `yaml:"apple_service_id"`
	} `yaml:"identity"`
}

func (f fileConfig) values() map[string]string {
	return map[string]string{
		"APP_ENV":                  f.Env,
		"APP_ADDR":                 f.Addr,
		"APP_PUBLIC_URL":           f.PublicURL,
		"APP_LOG_LEVEL":            f.LogLevel,
		"APP_DB_DSN":               f.Database.DSN,
		"APP_DB_MIGRATE":           f.Database.Migrate,
		"APP_COOKIE_SECRET":        f.Session.CookieSecret,
		"APP_SESSION_TTL":          f.Session.TTL,
		"APP_MAX_RECORDS_PER_USER": f.Limits.MaxRecordsPerUser,
		"APP_METRICS_ENABLED":      f.Metrics.Enabled,
		"APP_GOOGLE_CLIENT_ID":     f.Identity.GoogleClientID,
		"APP_APPLE_SERVICE_ID":     f.Identity.AppleServiceID,
	}
}

func loadYAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (map[string]string, error) {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return f.values(), nil
}

// layered prefers the environment and falls back to file values.
func layered(getenv func(string) string, file map[string]string) func(string) string {
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return file[key]
	}
}
