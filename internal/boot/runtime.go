// Package boot provides runtime configuration for the server process.
package boot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vsarchitect/vsa/internal/config"
)

// Environment variables that override values from config.toml.
const (
	EnvHTTPAddr       = "HTTP_ADDR"
	EnvSiteURL        = "SITE_URL"
	EnvGatewayBaseURL = "OPENROUTER_BASE_URL"
)

// RuntimeConfig holds parsed runtime settings (listen address, gateway endpoint, storage).
// Values may be overridden by environment variables (e.g. HTTP_ADDR, SITE_URL).
type RuntimeConfig struct {
	ServerAddr     string
	SiteURL        string
	GatewayBaseURL string
	GatewayTimeout time.Duration
	StorageDriver  string
	SettingsKey    string
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch driver {
	case "":
		driver = config.DefaultStorageDriver
	case config.StorageDriverFile, config.StorageDriverPostgres, config.StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	key := strings.TrimSpace(cfg.Storage.SettingsKey)
	if key == "" {
		key = config.DefaultSettingsKey
	}

	ret := &RuntimeConfig{
		ServerAddr:     cfg.Server.Addr,
		SiteURL:        cfg.Gateway.SiteURL,
		GatewayBaseURL: cfg.Gateway.BaseURL,
		GatewayTimeout: cfg.Gateway.Timeout(),
		StorageDriver:  driver,
		SettingsKey:    key,
	}

	if value := os.Getenv(EnvHTTPAddr); value != "" {
		ret.ServerAddr = value
	}
	if value := os.Getenv(EnvSiteURL); value != "" {
		ret.SiteURL = value
	}
	if value := os.Getenv(EnvGatewayBaseURL); value != "" {
		ret.GatewayBaseURL = value
	}
	return ret, nil
}
