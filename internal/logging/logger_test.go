package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	cfg := NewDefaultConfig()

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.NotNil(t, logger.zap)
	assert.Equal(t, cfg, logger.config)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLogger_ContextAwareMethods(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}

	ctx := WithProjectID(context.Background(), "proj-1")

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{"trace", func() { logger.Trace(ctx, "trace message") }, TraceLevel, "trace message"},
		{"debug", func() { logger.Debug(ctx, "debug message") }, zapcore.DebugLevel, "debug message"},
		{"info", func() { logger.Info(ctx, "info message") }, zapcore.InfoLevel, "info message"},
		{"warn", func() { logger.Warn(ctx, "warn message") }, zapcore.WarnLevel, "warn message"},
		{"error", func() { logger.Error(ctx, "error message") }, zapcore.ErrorLevel, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed.TakeAll()
			tt.logFunc()

			logs := observed.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			assert.Equal(t, tt.message, logs[0].Message)
			assert.Equal(t, "proj-1", logs[0].ContextMap()["project.id"])
		})
	}
}

func TestLogger_TraceDisabledAtInfo(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}

	logger.Trace(context.Background(), "hidden")
	assert.Empty(t, observed.All())
	assert.False(t, logger.Enabled(TraceLevel))
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
}

func TestLogger_WithAndNamed(t *testing.T) {
	tl := NewTestLogger()

	child := tl.Named("projectstore").With(zap.String("component", "store"))
	child.Info(context.Background(), "loaded")

	logs := tl.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "projectstore", logs[0].LoggerName)
	assert.Equal(t, "store", logs[0].ContextMap()["component"])
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hypewriter.log")

	cfg := NewDefaultConfig()
	cfg.Output.Stdout = false
	cfg.Output.File = path
	cfg.Sampling.Enabled = false

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)

	logger.Info(context.Background(), "written to file", zap.String("token", "abc123"))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "written to file")
	assert.Contains(t, content, `"service":"hypewriter"`)
	assert.Contains(t, content, "[REDACTED]")
	assert.False(t, strings.Contains(content, "abc123"), "token leaked into log file")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.Error(context.Background(), "discarded")
	assert.NoError(t, logger.Sync())
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{" info ", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"console", func(c *Config) { c.Format = "console" }, false},
		{"no outputs", func(c *Config) { c.Output.Stdout = false }, true},
		{"file only", func(c *Config) {
			c.Output.Stdout = false
			c.Output.File = "/tmp/x.log"
		}, false},
		{"zero tick", func(c *Config) { c.Sampling.Tick = 0 }, true},
		{"bad pattern", func(c *Config) { c.Redaction.Patterns = []string{"("} }, true},
		{"empty field value", func(c *Config) { c.Fields["env"] = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
