package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/open-edge-platform/client-launcher/internal/utils/system"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

// Workers returns the number of concurrent downloads
func (c *ConfigHelpers) Workers() int {
	return c.config.Workers
}

// Timeout returns the per-request timeout
func (c *ConfigHelpers) Timeout() time.Duration {
	return c.config.Timeout
}

// CacheDir returns the absolute path to the cache root
func (c *ConfigHelpers) CacheDir() (string, error) {
	if c.config.CacheDir == "" {
		return system.DefaultCacheRoot()
	}
	dir, err := system.ExpandHome(c.config.CacheDir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}

// IsDebugMode returns true if debug logging is enabled
func (c *ConfigHelpers) IsDebugMode() bool {
	return c.config.Logging.Level == "debug"
}

// GetConfig returns the underlying global config (for advanced usage)
func (c *ConfigHelpers) GetConfig() *GlobalConfig {
	return c.config
}

// CreateCacheDir ensures the cache directory exists and returns it
func (c *ConfigHelpers) CreateCacheDir() (string, error) {
	cacheDir, err := c.CacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	if err := createDirIfNotExists(cacheDir); err != nil {
		return "", fmt.Errorf("creating cache directory %s: %w", cacheDir, err)
	}
	return cacheDir, nil
}

// Helper function to create directories
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
