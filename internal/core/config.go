package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Cache CacheConfig `mapstructure:"cache"`
	Query QueryConfig `mapstructure:"query"`
	Log   LogConfig   `mapstructure:"log"`
}

// APIConfig holds remote holiday API configuration
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds local response cache configuration
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // "file", "bolt" or "memory"
	Dir     string `mapstructure:"dir"`
}

// QueryConfig holds defaults for holiday queries
type QueryConfig struct {
	Count    int    `mapstructure:"count"`
	MaxYears int    `mapstructure:"max_years"`
	Timezone string `mapstructure:"timezone"` // zone used to decide "today"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: APIBaseURL,
			Timeout: DefaultTimeout * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
			Dir:     CacheRoot(),
		},
		Query: QueryConfig{
			Count:    DefaultCount,
			MaxYears: DefaultMaxYears,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// SetDefaults registers the default configuration on v so that environment
// variables can override keys that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("cache.backend", def.Cache.Backend)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("query.count", def.Query.Count)
	v.SetDefault("query.max_years", def.Query.MaxYears)
	v.SetDefault("query.timezone", def.Query.Timezone)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
}

// LoadConfig loads configuration from file and environment.
// An explicit configFile must exist; otherwise config.yaml is looked up in
// ConfigDir() and the working directory, and a missing file is not an error.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a query.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBolt, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q (expected %s, %s or %s)",
			c.Cache.Backend, CacheBackendFile, CacheBackendBolt, CacheBackendMemory)
	}
	if c.Query.Count < 0 {
		return fmt.Errorf("query.count must not be negative, got %d", c.Query.Count)
	}
	if c.Query.MaxYears < 1 {
		return fmt.Errorf("query.max_years must be at least 1, got %d", c.Query.MaxYears)
	}
	return nil
}
