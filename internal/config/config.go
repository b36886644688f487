// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Per-request settings
// (operation, prompt, credential) live in the request document, not here.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Nova    NovaConfig    `mapstructure:"nova" yaml:"nova"`
	Runner  RunnerConfig  `mapstructure:"runner" yaml:"runner"`
}

// LoggerConfig configures the zap logger. The console core always writes to
// stderr because stdout is reserved for the result document.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`

	// File logging (rotated via lumberjack). Disabled when LogFile is empty.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the local chromedp instance used for screenshot
// capture. The headless flag itself comes from the request.
type BrowserConfig struct {
	// ExecPath optionally pins a Chrome/Chromium binary.
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
	// NavigationTimeout bounds a single capture navigation.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// QuietPeriod is how long the page must stay quiet after load before the
	// screenshot is taken (network-idle approximation).
	QuietPeriod     time.Duration `mapstructure:"quiet_period" yaml:"quiet_period"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	// Viewport dimensions for capture.
	ViewportWidth  int `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int `mapstructure:"viewport_height" yaml:"viewport_height"`
}

// NovaConfig configures the Nova Act service client.
type NovaConfig struct {
	// Endpoint is the base URL of the Nova Act HTTP API.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// RequestTimeout bounds a single HTTP exchange with the service. The
	// automation timeout from the request governs the overall phase.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// RunnerConfig tunes bridge-level behavior.
type RunnerConfig struct {
	// CommandsPerSecond paces perform_actions batches. Zero disables pacing.
	CommandsPerSecond float64 `mapstructure:"commands_per_second" yaml:"commands_per_second"`
}

// SetDefaults registers default values on the given viper instance. Called
// before reading the config file so the file and env only need to override.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "nova-bridge")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)

	v.SetDefault("browser.navigation_timeout", 60*time.Second)
	v.SetDefault("browser.quiet_period", 1500*time.Millisecond)
	v.SetDefault("browser.viewport_width", 1366)
	v.SetDefault("browser.viewport_height", 900)

	v.SetDefault("nova.endpoint", "https://api.nova-act.dev/v1")
	v.SetDefault("nova.request_timeout", 120*time.Second)

	v.SetDefault("runner.commands_per_second", 0.0)
}

// Load reads configuration from the optional file plus NOVA_* environment
// variables and unmarshals it. A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("NOVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns a Config populated with the same defaults Load applies,
// without touching the global viper state. Intended for tests and for
// fallback paths.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Unmarshal of pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}
