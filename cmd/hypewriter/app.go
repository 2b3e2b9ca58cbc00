package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/browser"
	"github.com/fyrsmithlabs/hypewriter/internal/config"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/projectstore"
	"github.com/fyrsmithlabs/hypewriter/internal/telemetry"
	"github.com/fyrsmithlabs/hypewriter/internal/toast"
	"github.com/fyrsmithlabs/hypewriter/internal/uistore"
)

// logFileName is where client commands log when no file is configured, so
// that log lines never mix with command output or the terminal UI.
const logFileName = "hypewriter.log"

// app is the wiring shared by the client commands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	tel      *telemetry.Telemetry
	client   *api.Client
	storage  *browser.FileStorage
	history  *browser.SessionHistory
	viewport *browser.MemoryViewport
	projects *projectstore.Store
	toasts   *toast.Store
	ui       *uistore.Store
}

// loadConfig reads the config file and applies the --server override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(serverURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --server: %w", err)
		}
	}
	return cfg, nil
}

// newTelemetry builds telemetry from the config. Failures degrade to no-op
// providers.
func newTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	return telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
}

// newLogger builds the process logger. toFile routes output to the log file
// when none is configured.
func newLogger(cfg *config.Config, tel *telemetry.Telemetry, toFile bool) (*logging.Logger, error) {
	appLogging := cfg.Logging
	if toFile && appLogging.File == "" {
		dir, err := config.EnsureConfigDir()
		if err != nil {
			return nil, err
		}
		appLogging.File = filepath.Join(dir, logFileName)
	}

	logCfg, err := logging.FromAppConfig(appLogging)
	if err != nil {
		return nil, err
	}
	logCfg.Output.OTEL = tel.LoggerProvider() != nil
	return logging.NewLogger(logCfg, tel.LoggerProvider())
}

// newApp wires config, logging, telemetry, durable storage and the three
// stores. The caller must Close it.
func newApp(ctx context.Context, uiOpts ...uistore.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, tel, true)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	storage, err := browser.NewFileStorage(cfg.Storage.Path, logger)
	if err != nil {
		_ = logger.Close()
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		tel:     tel,
		storage: storage,
		history: browser.NewSessionHistory(storage),
		client: api.NewClient(cfg.Server.BaseURL,
			api.WithTimeout(cfg.Server.Timeout.Duration()),
			api.WithLogger(logger),
			api.WithTelemetry(tel),
		),
		viewport: browser.NewMemoryViewport(0),
		toasts:   toast.New(toast.WithErrorDuration(cfg.UI.ErrorToastDuration.Duration())),
	}
	a.projects = projectstore.New(a.client, a.history, projectstore.WithLogger(logger))

	opts := append([]uistore.Option{
		uistore.WithConfig(cfg.UI),
		uistore.WithLogger(logger),
	}, uiOpts...)
	a.ui = uistore.New(uistore.Environment{
		History:     a.history,
		Storage:     storage,
		Viewport:    a.viewport,
		ColorScheme: browser.TerminalColorScheme{},
	}, opts...)

	logger.Debug(ctx, "client ready", zap.String("server", cfg.Server.BaseURL))
	return a, nil
}

// Close flushes telemetry and logs.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(
		a.tel.Shutdown(ctx),
		a.logger.Close(),
	)
}
