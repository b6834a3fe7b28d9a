// Package core provides shared constants, configuration and date helpers for holidate.
package core

import (
	"os"
	"path/filepath"
)

// API configuration
const (
	APIBaseURL     = "https://date.nager.at"
	APIVersion     = "v3"
	DefaultTimeout = 30 // seconds
)

// Date formats
const (
	APIDateFmt = "2006-01-02"
)

// Query defaults
const (
	DefaultCount    = 5
	DefaultMaxYears = 3 // years attempted before giving up on filling a query
)

// Cache backends
const (
	CacheBackendFile   = "file"
	CacheBackendBolt   = "bolt"
	CacheBackendMemory = "memory"
)

// EnvPrefix is the prefix for environment overrides (HOLIDATE_CACHE_DIR, ...).
const EnvPrefix = "HOLIDATE"

// CacheRoot returns the default cache directory path.
func CacheRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "holidate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".holidate", "cache")
}

// ConfigDir returns the default directory searched for config.yaml.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "holidate")
}

// Version is the current CLI version.
const Version = "0.3.0"
