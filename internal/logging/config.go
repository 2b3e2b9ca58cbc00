// internal/logging/config.go
package logging

import (
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/hypewriter/internal/config"
)

// Config holds logging configuration.
type Config struct {
	Level     zapcore.Level     `koanf:"level"`
	Format    string            `koanf:"format"`
	Output    OutputConfig      `koanf:"output"`
	Sampling  SamplingConfig    `koanf:"sampling"`
	Caller    CallerConfig      `koanf:"caller"`
	Fields    map[string]string `koanf:"fields"`
	Redaction RedactionConfig   `koanf:"redaction"`
}

// OutputConfig controls where logs are written.
type OutputConfig struct {
	Stdout bool   `koanf:"stdout"`
	File   string `koanf:"file"`
	OTEL   bool   `koanf:"otel"`
}

// SamplingConfig controls log volume reduction.
type SamplingConfig struct {
	Enabled    bool            `koanf:"enabled"`
	Tick       config.Duration `koanf:"tick"`
	Initial    int             `koanf:"initial"`
	Thereafter int             `koanf:"thereafter"`
}

// CallerConfig controls caller information in logs.
type CallerConfig struct {
	Enabled bool `koanf:"enabled"`
	Skip    int  `koanf:"skip"`
}

// RedactionConfig controls sensitive data redaction.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Fields   []string `koanf:"fields"`
	Patterns []string `koanf:"patterns"`
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Output: OutputConfig{
			Stdout: true,
		},
		Sampling: SamplingConfig{
			Enabled:    true,
			Tick:       config.Duration(time.Second),
			Initial:    100,
			Thereafter: 10,
		},
		Caller: CallerConfig{
			Enabled: true,
			Skip:    1,
		},
		Fields: map[string]string{
			"service": "hypewriter",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields: []string{
				"password", "secret", "token", "api_key", "authorization",
			},
			Patterns: []string{
				`(?i)bearer\s+\S+`,
			},
		},
	}
}

// FromAppConfig builds a logging config from the file-level settings.
func FromAppConfig(app config.LoggingConfig) (*Config, error) {
	cfg := NewDefaultConfig()

	if app.Level != "" {
		level, err := LevelFromString(app.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", app.Level, err)
		}
		cfg.Level = level
	}
	if app.Format != "" {
		cfg.Format = app.Format
	}
	if app.File != "" {
		cfg.Output.Stdout = false
		cfg.Output.File = app.File
	}

	return cfg, cfg.Validate()
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if !c.Output.Stdout && c.Output.File == "" && !c.Output.OTEL {
		return fmt.Errorf("at least one output must be enabled (stdout, file or otel)")
	}
	if c.Sampling.Enabled && c.Sampling.Tick.Duration() <= 0 {
		return fmt.Errorf("sampling tick must be > 0 when sampling enabled")
	}
	if c.Caller.Enabled && c.Caller.Skip < 0 {
		return fmt.Errorf("caller skip must be >= 0, got %d", c.Caller.Skip)
	}

	if c.Redaction.Enabled {
		for _, pattern := range c.Redaction.Patterns {
			if len(pattern) > 200 {
				return fmt.Errorf("redaction pattern too long (max 200 chars): %q", pattern)
			}
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("invalid redaction pattern %q: %w", pattern, err)
			}
		}
	}

	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}

	return nil
}
