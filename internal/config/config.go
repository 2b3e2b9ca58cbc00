// Package config provides configuration loading for hypewriter.
//
// Configuration is assembled from defaults, an optional YAML file and
// HYPEWRITER_* environment variables, in that order of precedence (lowest
// first). See LoadWithFile.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete hypewriter client configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	UI        UIConfig        `koanf:"ui"`
	DevServer DevServerConfig `koanf:"dev_server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig describes the project backend the client talks to.
type ServerConfig struct {
	BaseURL string   `koanf:"base_url"`
	Timeout Duration `koanf:"timeout"`
}

// StorageConfig locates durable client-side state (theme preference,
// last location).
type StorageConfig struct {
	Path string `koanf:"path"`
}

// UIConfig holds UI store tuning.
type UIConfig struct {
	MobileBreakpoint   int      `koanf:"mobile_breakpoint"`
	ToastDuration      Duration `koanf:"toast_duration"`
	ErrorToastDuration Duration `koanf:"error_toast_duration"`
}

// DevServerConfig holds the listen address of the in-memory development
// backend started by `hypewriter serve-dev`.
type DevServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// LoggingConfig is the subset of logging settings exposed in the config file.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// TelemetryConfig is the subset of telemetry settings exposed in the config file.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	Protocol    string `koanf:"protocol"`
	Insecure    bool   `koanf:"insecure"`
	ServiceName string `koanf:"service_name"`
}

// Default values.
const (
	DefaultBaseURL            = "http://localhost:8000"
	DefaultTimeout            = 30 * time.Second
	DefaultMobileBreakpoint   = 768
	DefaultToastDuration      = 5 * time.Second
	DefaultErrorToastDuration = 6 * time.Second
	DefaultDevServerHost      = "localhost"
	DefaultDevServerPort      = 8000
)

// Default returns a Config populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the server base URL is not an absolute http(s) URL
//   - the request timeout is not positive
//   - the mobile breakpoint is not positive
//   - the dev server port is not between 1 and 65535
//   - the log format is not json or console
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server base_url %q: %w", c.Server.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server base_url must use http or https, got %q", c.Server.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server base_url is missing a host: %q", c.Server.BaseURL)
	}

	if c.Server.Timeout.Duration() <= 0 {
		return errors.New("server timeout must be positive")
	}

	if c.UI.MobileBreakpoint <= 0 {
		return fmt.Errorf("invalid ui mobile_breakpoint: %d (must be > 0)", c.UI.MobileBreakpoint)
	}

	if c.DevServer.Port < 1 || c.DevServer.Port > 65535 {
		return fmt.Errorf("invalid dev_server port: %d (must be 1-65535)", c.DevServer.Port)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry endpoint required when telemetry is enabled")
	}

	return nil
}
