package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Logging LoggingConfig
	Refresh RefreshConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

// APIConfig describes the CRM backend the console talks to
type APIConfig struct {
	// BaseURL is prepended to every request path, e.g. https://crm.example.com
	BaseURL string
	// Timeout is the per-request timeout in seconds
	Timeout int
	// LoginPath is where the navigator is sent when the session expires
	LoginPath string
	// UserAgent is sent on every request
	UserAgent string
}

// SessionConfig controls where the bearer token is persisted
type SessionConfig struct {
	// Store is one of "memory", "file" or "redis"
	Store string
	// TokenKey is the single fixed key the token is stored under
	TokenKey string
	// FilePath is the directory used by the file store
	FilePath string
	// RedisAddr, RedisPassword and RedisDB configure the redis store
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// TokenTTL bounds how long the redis store keeps a token, in seconds (0 = no expiry)
	TokenTTL int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// RefreshConfig controls the periodic dashboard refresh used by watch mode
type RefreshConfig struct {
	// Schedule is a cron expression with an optional seconds field
	Schedule string
	// Timeout bounds one refresh run, in seconds
	Timeout int
}

// TimeoutDuration returns the request timeout as duration
func (a *APIConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// TokenTTLDuration returns the token TTL as duration
func (s *SessionConfig) TokenTTLDuration() time.Duration {
	return time.Duration(s.TokenTTL) * time.Second
}

// TimeoutDuration returns the refresh timeout as duration
func (r *RefreshConfig) TimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL is required")
	}
	switch c.Session.Store {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unsupported session store: %s", c.Session.Store)
	}
	if c.Session.TokenKey == "" {
		return fmt.Errorf("session.tokenKey is required")
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadWithViper(viper.New())
}

// LoadWithViper loads configuration into a caller-supplied viper instance,
// letting the CLI bind its flags before values are resolved
func LoadWithViper(v *viper.Viper) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The web frontend's variable is honored when API_BASEURL is absent
	if err := v.BindEnv("api.baseURL", "API_BASEURL", "VITE_API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Session.RedisAddr == "" {
		if host := v.GetString("REDIS_HOST"); host != "" {
			port := v.GetString("REDIS_PORT")
			if port == "" {
				port = "6379"
			}
			cfg.Session.RedisAddr = host + ":" + port
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "CRM Console")
	v.SetDefault("app.environment", "development")

	// API defaults
	v.SetDefault("api.baseURL", "http://localhost:8080")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.loginPath", "/login")
	v.SetDefault("api.userAgent", "crm-console")

	// Session defaults
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.tokenKey", "token")
	v.SetDefault("session.filePath", "./.crm")
	v.SetDefault("session.redisAddr", "")
	v.SetDefault("session.redisDB", 0)
	v.SetDefault("session.tokenTTL", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Refresh defaults
	v.SetDefault("refresh.schedule", "@every 1m")
	v.SetDefault("refresh.timeout", 30)
}
