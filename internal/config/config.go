// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Detector() DetectorConfig
	Probe() ProbeConfig
	Browser() BrowserConfig
	Database() DatabaseConfig

	// Detector setters, used by CLI flags to override file/env values.
	SetDetectorCooldown(d time.Duration)
	SetDetectorDebounce(d time.Duration)
	SetProbeEnabled(bool)
	SetBrowserHeadless(bool)
}

// Config holds the entire application configuration. Private fields enforce
// access through the Interface getters.
type Config struct {
	logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	detector DetectorConfig `mapstructure:"detector" yaml:"detector"`
	probe    ProbeConfig    `mapstructure:"probe" yaml:"probe"`
	browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	database DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.logger }
func (c *Config) Detector() DetectorConfig { return c.detector }
func (c *Config) Probe() ProbeConfig       { return c.probe }
func (c *Config) Browser() BrowserConfig   { return c.browser }
func (c *Config) Database() DatabaseConfig { return c.database }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetDetectorCooldown(d time.Duration) { c.detector.ScanCooldown = d }
func (c *Config) SetDetectorDebounce(d time.Duration) { c.detector.NotifyDebounce = d }
func (c *Config) SetProbeEnabled(b bool)              { c.probe.Enabled = b }
func (c *Config) SetBrowserHeadless(b bool)           { c.browser.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DetectorConfig tunes the detection scheduler and duplicate detector.
// The defaults mirror the values the detection pipeline was calibrated with;
// retune with care, the duplicate thresholds interact.
type DetectorConfig struct {
	// ScanCooldown is the minimum interval between non-forced scans.
	ScanCooldown time.Duration `mapstructure:"scan_cooldown" yaml:"scan_cooldown"`
	// NotifyDebounce is the quiet window before a snapshot emission.
	NotifyDebounce time.Duration `mapstructure:"notify_debounce" yaml:"notify_debounce"`
	// SizeCacheCapacity bounds the file-size cache; on overflow the oldest
	// ~20% of entries are evicted.
	SizeCacheCapacity int `mapstructure:"size_cache_capacity" yaml:"size_cache_capacity"`
	// TitleSimilarityThreshold applies to the cross-pass edit-distance check.
	TitleSimilarityThreshold float64 `mapstructure:"title_similarity_threshold" yaml:"title_similarity_threshold"`
	// URLSimilarityThreshold applies to the cross-pass weighted URL check.
	URLSimilarityThreshold float64 `mapstructure:"url_similarity_threshold" yaml:"url_similarity_threshold"`
}

// ProbeConfig tunes the file-size enrichment prober.
type ProbeConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Concurrency     int           `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// BrowserConfig holds settings for the headless browser DOM provider.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// DatabaseConfig holds the connection details for the optional snapshot sink.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// fileConfig is the exported mirror of Config used for unmarshaling;
// mapstructure cannot populate unexported fields directly.
type fileConfig struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Detector DetectorConfig `mapstructure:"detector"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Database DatabaseConfig `mapstructure:"database"`
}

func (f fileConfig) toConfig() *Config {
	return &Config{
		logger:   f.Logger,
		detector: f.Detector,
		probe:    f.Probe,
		browser:  f.Browser,
		database: f.Database,
	}
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return fc.toConfig()
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "mediagrab-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Detector --
	v.SetDefault("detector.scan_cooldown", 5*time.Second)
	v.SetDefault("detector.notify_debounce", 1*time.Second)
	v.SetDefault("detector.size_cache_capacity", 1000)
	v.SetDefault("detector.title_similarity_threshold", 0.8)
	v.SetDefault("detector.url_similarity_threshold", 0.9)

	// -- Probe --
	v.SetDefault("probe.enabled", true)
	v.SetDefault("probe.request_timeout", "10s")
	v.SetDefault("probe.concurrency", 8)
	v.SetDefault("probe.rate_limit", 20.0)
	v.SetDefault("probe.ignore_tls_errors", false)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.post_load_wait", "2s")
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg := fc.toConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.detector.ScanCooldown < 0 {
		return fmt.Errorf("detector.scan_cooldown must not be negative")
	}
	if c.detector.NotifyDebounce <= 0 {
		return fmt.Errorf("detector.notify_debounce must be a positive duration")
	}
	if c.detector.SizeCacheCapacity <= 0 {
		return fmt.Errorf("detector.size_cache_capacity must be a positive integer")
	}
	if t := c.detector.TitleSimilarityThreshold; t < 0.0 || t > 1.0 {
		return fmt.Errorf("detector.title_similarity_threshold must be between 0.0 and 1.0")
	}
	if t := c.detector.URLSimilarityThreshold; t < 0.0 || t > 1.0 {
		return fmt.Errorf("detector.url_similarity_threshold must be between 0.0 and 1.0")
	}
	if c.probe.Enabled && c.probe.Concurrency <= 0 {
		return fmt.Errorf("probe.concurrency must be a positive integer")
	}
	return nil
}
