package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinecity-client/internal/normalize"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched in order when CONFIG_PATH is unset
var DefaultPaths = []string{"config.yaml", "config.yml"}

// Config holds all configuration for the gateway and the terminal client
type Config struct {
	Port     string `koanf:"port" validate:"required"`
	GinMode  string `koanf:"gin_mode" validate:"oneof=debug release test"`
	LogLevel string `koanf:"log_level" validate:"oneof=trace debug info warn error"`

	APIURL         string        `koanf:"api_url" validate:"required,url"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	BreakerEnabled bool          `koanf:"breaker_enabled"`

	// 为空时不启用缓存
	RedisURL string        `koanf:"redis_url"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	AdminAPIKey   string   `koanf:"admin_api_key"`
	SessionSecret string   `koanf:"session_secret" validate:"omitempty,min=32"`
	CookieSecure  bool     `koanf:"cookie_secure"`
	CORSOrigins   []string `koanf:"cors_origins"`

	SessionFile     string        `koanf:"session_file" validate:"required"`
	PollInterval    time.Duration `koanf:"poll_interval" validate:"gt=0"`
	NormalizeStrict bool          `koanf:"normalize_strict"`
}

func defaultConfig() *Config {
	return &Config{
		Port:           "8080",
		GinMode:        "debug",
		LogLevel:       "info",
		APIURL:         "http://localhost:8000",
		RequestTimeout: 10 * time.Second,
		BreakerEnabled: true,
		RedisURL:       "",
		CacheTTL:       5 * time.Minute,
		CORSOrigins:    []string{"*"},
		SessionFile:    defaultSessionFile(),
		PollInterval:   60 * time.Second,
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cinecity", "session.json")
	}
	return filepath.Join(home, ".cinecity", "session.json")
}

// env 名到配置键；未列出的变量忽略
var envKeys = map[string]string{
	"PORT":             "port",
	"GIN_MODE":         "gin_mode",
	"LOG_LEVEL":        "log_level",
	"CINECITY_API_URL": "api_url",
	"REQUEST_TIMEOUT":  "request_timeout",
	"BREAKER_ENABLED":  "breaker_enabled",
	"REDIS_URL":        "redis_url",
	"CACHE_TTL":        "cache_ttl",
	"ADMIN_API_KEY":    "admin_api_key",
	"SESSION_SECRET":   "session_secret",
	"COOKIE_SECURE":    "cookie_secure",
	"CORS_ORIGINS":     "cors_origins",
	"SESSION_FILE":     "session_file",
	"POLL_INTERVAL":    "poll_interval",
	"NORMALIZE_STRICT": "normalize_strict",
}

// Load layers defaults, an optional YAML file and environment variables, then validates
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(key string) string {
		return envKeys[key]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitList(k, "cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// NormalizePolicy is strict in development setups that ask for it
func (c *Config) NormalizePolicy() normalize.Policy {
	if c.NormalizeStrict {
		return normalize.PolicyStrict
	}
	return normalize.PolicyLenient
}

// CacheEnabled reports whether a Redis URL was given
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

func findFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// splitList turns a comma-separated env value into a slice
func splitList(k *koanf.Koanf, key string) error {
	raw, ok := k.Get(key).(string)
	if !ok {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if err := k.Set(key, parts); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
