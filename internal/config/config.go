package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/open-edge-platform/client-launcher/internal/codec"
	"github.com/open-edge-platform/client-launcher/internal/config/validate"
	"github.com/open-edge-platform/client-launcher/internal/javconfig"
	"github.com/open-edge-platform/client-launcher/internal/utils/system"
)

// DefaultConfigFileName is looked up in the working directory.
const DefaultConfigFileName = "client-launcher.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLIENT_LAUNCHER_"

// ErrInvalidConfig wraps every settings validation failure.
var ErrInvalidConfig = errors.New("invalid launcher configuration")

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GlobalConfig holds the launcher settings.
type GlobalConfig struct {
	CacheDir        string        `yaml:"cache_dir"`
	ConfigURL       string        `yaml:"config_url"`
	BinaryType      string        `yaml:"binary_type"`
	Workers         int           `yaml:"workers"`
	Timeout         time.Duration `yaml:"timeout"`
	Compression     string        `yaml:"compression"`
	VerifyDownloads bool          `yaml:"verify_downloads"`
	ReportDir       string        `yaml:"report_dir"`
	MetricsFile     string        `yaml:"metrics_file"`
	Logging         LoggingConfig `yaml:"logging"`
}

// GlConfig is the configuration of the running process.
var GlConfig = DefaultConfig()

// DefaultConfig returns the built-in settings. An empty CacheDir means
// <home>/NXTLauncher.
func DefaultConfig() *GlobalConfig {
	return &GlobalConfig{
		ConfigURL:       javconfig.DefaultEndpoint,
		BinaryType:      "auto",
		Workers:         1,
		Timeout:         5 * time.Minute,
		Compression:     "lzma",
		VerifyDownloads: true,
		Logging:         LoggingConfig{Level: "info"},
	}
}

// SetGlobal replaces GlConfig.
func SetGlobal(c *GlobalConfig) { GlConfig = c }

// candidatePaths lists the settings files tried when none is given.
func candidatePaths() []string {
	paths := []string{DefaultConfigFileName}
	if dir, err := system.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "client-launcher", "config.yml"))
	}
	return paths
}

// Load reads settings from path, or from the first existing default
// location when path is empty, then applies .env and environment overrides.
// It returns the settings file actually used ("" if none).
func Load(path string) (*GlobalConfig, string, error) {
	cfg := DefaultConfig()

	used := ""
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, "", err
		}
		used = path
	} else {
		for _, candidate := range candidatePaths() {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := cfg.mergeFile(candidate); err != nil {
				return nil, "", err
			}
			used = candidate
			break
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *GlobalConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.merge(data, path)
}

func (c *GlobalConfig) merge(data []byte, source string) error {
	if err := validate.ValidateSettingsYAML(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, source, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, source, err)
	}
	return nil
}

// Parse decodes a YAML settings document over the defaults.
func Parse(data []byte) (*GlobalConfig, error) {
	cfg := DefaultConfig()
	if err := cfg.merge(data, "settings"); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from CLIENT_LAUNCHER_* variables.
func (c *GlobalConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("CACHE_DIR", &c.CacheDir)
	str("CONFIG_URL", &c.ConfigURL)
	str("BINARY_TYPE", &c.BinaryType)
	str("COMPRESSION", &c.Compression)
	str("REPORT_DIR", &c.ReportDir)
	str("METRICS_FILE", &c.MetricsFile)
	str("LOG_LEVEL", &c.Logging.Level)

	if v, ok := lookup(EnvPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sWORKERS=%q: %v", ErrInvalidConfig, EnvPrefix, v, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sTIMEOUT=%q: %v", ErrInvalidConfig, EnvPrefix, v, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "VERIFY_DOWNLOADS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sVERIFY_DOWNLOADS=%q: %v", ErrInvalidConfig, EnvPrefix, v, err)
		}
		c.VerifyDownloads = b
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *GlobalConfig) Validate() error {
	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("%w: workers must be between 1 and 64, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.ConfigURL, "http://") && !strings.HasPrefix(c.ConfigURL, "https://") {
		return fmt.Errorf("%w: config_url must be an http(s) URL, got %q", ErrInvalidConfig, c.ConfigURL)
	}
	if _, err := c.ResolveBinaryType(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.ResolveCodec(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// ResolveBinaryType maps binary_type onto a BinaryType; "auto" or empty
// detects the host.
func (c *GlobalConfig) ResolveBinaryType() (javconfig.BinaryType, error) {
	if c.BinaryType == "" || strings.EqualFold(c.BinaryType, "auto") {
		return javconfig.DetectBinaryType(), nil
	}
	return javconfig.ParseBinaryType(c.BinaryType)
}

// ResolveCodec maps compression onto a codec.
func (c *GlobalConfig) ResolveCodec() (codec.Codec, error) {
	return codec.Parse(c.Compression)
}
