// internal/logging/otel.go
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// newMultiCore creates a core writing to stdout, a log file and/or OTEL.
// The returned closers release any files opened for the file output.
func newMultiCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, []func() error, error) {
	cores := make([]zapcore.Core, 0, 3)
	var closers []func() error

	if cfg.Output.Stdout || cfg.Output.File != "" {
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}

		if cfg.Output.Stdout {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), cfg.Level))
		}

		if cfg.Output.File != "" {
			f, err := openLogFile(cfg.Output.File)
			if err != nil {
				return nil, nil, err
			}
			closers = append(closers, f.Close)
			cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), cfg.Level))
		}
	}

	if cfg.Output.OTEL && otelProvider != nil {
		otelCore := otelzap.NewCore("hypewriter",
			otelzap.WithLoggerProvider(otelProvider),
		)
		cores = append(cores, otelCore)
	}

	if len(cores) == 0 {
		return nil, nil, fmt.Errorf("at least one output must be enabled and available")
	}

	var core zapcore.Core
	if len(cores) == 1 {
		core = cores[0]
	} else {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), closers, nil
}

// openLogFile opens path for appending, expanding a leading ~ and creating
// parent directories with 0700 permissions.
func openLogFile(path string) (*os.File, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
