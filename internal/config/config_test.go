package config_test

import (
	"testing"
	"time"

	"github.com/straye-as/crm-console/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "CRM Console", cfg.App.Name)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, "/login", cfg.API.LoginPath)
	assert.Equal(t, 30*time.Second, cfg.API.TimeoutDuration())
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "token", cfg.Session.TokenKey)
	assert.Equal(t, "@every 1m", cfg.Refresh.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("API_BASEURL", "https://crm.example.com")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://crm.example.com", cfg.API.BaseURL)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "cache.internal:6379", cfg.Session.RedisAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FrontendBaseURL(t *testing.T) {
	t.Setenv("VITE_API_URL", "https://api.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)

	t.Setenv("API_BASEURL", "https://crm.example.com")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.com", cfg.API.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			API:     config.APIConfig{BaseURL: "http://localhost"},
			Session: config.SessionConfig{Store: "memory", TokenKey: "token"},
		}
	}

	t.Run("missing base url", func(t *testing.T) {
		cfg := base()
		cfg.API.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := base()
		cfg.Session.Store = "cookie"
		assert.ErrorContains(t, cfg.Validate(), "unsupported session store")
	})

	t.Run("missing token key", func(t *testing.T) {
		cfg := base()
		cfg.Session.TokenKey = ""
		assert.Error(t, cfg.Validate())
	})
}
