// Package main implements the hypewriter CLI: one-shot project commands,
// theme settings, the terminal UI and a development backend.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// serverURL overrides server.base_url from the config file
	serverURL string
	// configPath is an explicit config file location
	configPath string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hypewriter",
	Short: "Client for the hypewriter novel-writing backend",
	Long: `hypewriter manages novel projects on a hypewriter backend.

It lists, creates, imports, activates and deletes projects, remembers the
active project between invocations, and offers a terminal UI.

Configuration is read from ~/.config/hypewriter/config.yaml and HYPEWRITER_*
environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend URL (default from config, http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/hypewriter/config.yaml)")
}
