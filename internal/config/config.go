// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":8080"
	DefaultGatewayURL     = "https://openrouter.ai/api/v1"
	DefaultSiteURL        = "http://localhost:3000"
	DefaultAppTitle       = "Virtual Service Architect"
	DefaultModel          = "anthropic/claude-3.5-sonnet"
	DefaultStorageDriver  = "file"
	DefaultStorageDir     = "data"
	DefaultSettingsKey    = "vsa-settings"
	DefaultPGHost         = "127.0.0.1"
	DefaultPGPort         = 5432
	DefaultPGUser         = "postgres"
	DefaultPGDatabase     = "vsa"
	DefaultPGSSLMode      = "disable"
	DefaultCORSAllowedAll = "*"
)

// Storage drivers accepted in [storage].driver.
const (
	StorageDriverFile     = "file"
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Storage  StorageConfig  `toml:"storage"`
	Postgres PostgresConfig `toml:"postgres"`
	Prompts  PromptsConfig  `toml:"prompts"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP listen address and allowed CORS origins.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// GatewayConfig describes the upstream chat-completion service.
type GatewayConfig struct {
	BaseURL        string `toml:"base_url"`
	SiteURL        string `toml:"site_url"`
	AppTitle       string `toml:"app_title"`
	DefaultModel   string `toml:"default_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-call timeout; zero means no timeout.
func (c GatewayConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig selects where the settings snapshot is persisted.
type StorageConfig struct {
	Driver      string `toml:"driver"`
	Dir         string `toml:"dir"`
	SettingsKey string `toml:"settings_key"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// PromptsConfig points at an optional YAML prompt library.
type PromptsConfig struct {
	File string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:           DefaultHTTPAddr,
			AllowedOrigins: []string{DefaultCORSAllowedAll},
		},
		Gateway: GatewayConfig{
			BaseURL:      DefaultGatewayURL,
			SiteURL:      DefaultSiteURL,
			AppTitle:     DefaultAppTitle,
			DefaultModel: DefaultModel,
		},
		Storage: StorageConfig{
			Driver:      DefaultStorageDriver,
			Dir:         DefaultStorageDir,
			SettingsKey: DefaultSettingsKey,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
	}
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
