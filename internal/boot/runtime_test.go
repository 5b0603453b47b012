package boot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsarchitect/vsa/internal/config"
)

func TestProvideRuntimeConfigDefaults(t *testing.T) {
	t.Setenv(EnvHTTPAddr, "")
	t.Setenv(EnvSiteURL, "")
	t.Setenv(EnvGatewayBaseURL, "")

	cfg := config.Default()
	cfg.Storage.Driver = " File "
	cfg.Storage.SettingsKey = ""
	rt, err := ProvideRuntimeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHTTPAddr, rt.ServerAddr)
	assert.Equal(t, config.DefaultSiteURL, rt.SiteURL)
	assert.Equal(t, config.StorageDriverFile, rt.StorageDriver)
	assert.Equal(t, config.DefaultSettingsKey, rt.SettingsKey)
}

func TestProvideRuntimeConfigEnvOverrides(t *testing.T) {
	t.Setenv(EnvHTTPAddr, ":7000")
	t.Setenv(EnvSiteURL, "https://vsa.example.com")
	t.Setenv(EnvGatewayBaseURL, "http://127.0.0.1:9999/v1")

	rt, err := ProvideRuntimeConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, ":7000", rt.ServerAddr)
	assert.Equal(t, "https://vsa.example.com", rt.SiteURL)
	assert.Equal(t, "http://127.0.0.1:9999/v1", rt.GatewayBaseURL)
}

func TestProvideRuntimeConfigRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "redis"
	_, err := ProvideRuntimeConfig(cfg)
	assert.Error(t, err)
}
