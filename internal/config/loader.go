package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment variable read by the loader.
	EnvPrefix = "HYPEWRITER_"

	appDirName = "hypewriter"
)

// sections lists top-level config keys, longest first so that dev_server is
// matched before server when mapping environment variables.
var sections = []string{"dev_server", "telemetry", "logging", "storage", "server", "ui"}

// LoadWithFile loads configuration from YAML file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (HYPEWRITER_SERVER_BASE_URL, HYPEWRITER_UI_TOAST_DURATION, etc.)
//  2. YAML config file (~/.config/hypewriter/config.yaml)
//  3. Hardcoded defaults
//
// The file must live in ~/.config/hypewriter/ or /etc/hypewriter/, carry 0600
// or 0400 permissions and be smaller than 1MB. A missing file is not an error.
//
// Environment variables map to keys by stripping the prefix and splitting the
// section from the field name:
//
//	HYPEWRITER_SERVER_BASE_URL   -> server.base_url
//	HYPEWRITER_DEV_SERVER_PORT   -> dev_server.port
//	HYPEWRITER_LOGGING_LEVEL     -> logging.level
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Validate through the open descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps HYPEWRITER_SECTION_FIELD_NAME to section.field_name.
// Variables that do not start with a known section are ignored.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(lower, section+"_") {
			return section + "." + strings.TrimPrefix(lower, section+"_")
		}
	}
	return ""
}

// DefaultDir returns ~/.config/hypewriter.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// EnsureConfigDir creates the hypewriter config directory with 0700
// permissions if it does not exist yet.
func EnsureConfigDir() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Follow symlinks so they cannot point outside the allowed directories.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	dir, err := DefaultDir()
	if err != nil {
		return err
	}

	allowedDirs := []string{dir, filepath.Join("/etc", appDirName)}
	for _, allowed := range allowedDirs {
		if strings.HasPrefix(resolvedPath, allowed+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/%s/ or /etc/%s/", appDirName, appDirName)
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	// Windows has a different permission model.
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = DefaultBaseURL
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = Duration(DefaultTimeout)
	}

	if cfg.Storage.Path == "" {
		if dir, err := DefaultDir(); err == nil {
			cfg.Storage.Path = filepath.Join(dir, "storage.json")
		}
	}

	if cfg.UI.MobileBreakpoint == 0 {
		cfg.UI.MobileBreakpoint = DefaultMobileBreakpoint
	}
	if cfg.UI.ToastDuration == 0 {
		cfg.UI.ToastDuration = Duration(DefaultToastDuration)
	}
	if cfg.UI.ErrorToastDuration == 0 {
		cfg.UI.ErrorToastDuration = Duration(DefaultErrorToastDuration)
	}

	if cfg.DevServer.Host == "" {
		cfg.DevServer.Host = DefaultDevServerHost
	}
	if cfg.DevServer.Port == 0 {
		cfg.DevServer.Port = DefaultDevServerPort
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "hypewriter"
	}
}
