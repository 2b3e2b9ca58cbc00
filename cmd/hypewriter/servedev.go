package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/devserver"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
)

var (
	devHost string
	devPort int
)

func init() {
	rootCmd.AddCommand(serveDevCmd)
	serveDevCmd.Flags().StringVar(&devHost, "host", "", "listen host (default from config, localhost)")
	serveDevCmd.Flags().IntVar(&devPort, "port", 0, "listen port (default from config, 8000)")
}

var serveDevCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run an in-memory development backend",
	Long: `Run a development backend serving the project REST API from memory.
Projects are lost when the server stops.

Prometheus metrics are served on /metrics and a health check on /health.

Examples:
  hypewriter serve-dev
  hypewriter serve-dev --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServeDev,
}

func runServeDev(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if devHost != "" {
		cfg.DevServer.Host = devHost
	}
	if devPort != 0 {
		cfg.DevServer.Port = devPort
	}

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, tel, false)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close() //nolint:errcheck

	srv, err := devserver.NewServer(project.NewCatalog(), logger, &devserver.Config{
		Host: cfg.DevServer.Host,
		Port: cfg.DevServer.Port,
	}, tel)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving development backend on http://%s\n", srv.Addr())

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dev server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "dev server shutdown failed", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "telemetry shutdown failed", zap.Error(err))
	}
	return nil
}
