package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeToggleCmd)
	themeCmd.AddCommand(themeSetCmd)
}

// themeCmd is the parent command for the dark mode preference
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the dark mode preference",
	Long: `Show or change the dark mode preference. The preference is stored in the
hypewriter storage file and shared with the terminal UI. Without a stored
preference the terminal background decides.`,
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current theme",
	Args:  cobra.NoArgs,
	RunE: withApp(func(_ context.Context, a *app, cmd *cobra.Command, _ []string) error {
		defer a.ui.Initialize()()
		printTheme(cmd.OutOrStdout(), a.ui.DarkMode())
		return nil
	}),
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between dark and light",
	Args:  cobra.NoArgs,
	RunE: withApp(func(_ context.Context, a *app, cmd *cobra.Command, _ []string) error {
		defer a.ui.Initialize()()
		a.ui.ToggleDarkMode()
		printTheme(cmd.OutOrStdout(), a.ui.DarkMode())
		return nil
	}),
}

var themeSetCmd = &cobra.Command{
	Use:       "set <on|off>",
	Short:     "Turn dark mode on or off",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "dark", "light"},
	RunE: withApp(func(_ context.Context, a *app, cmd *cobra.Command, args []string) error {
		defer a.ui.Initialize()()
		a.ui.SetDarkMode(args[0] == "on" || args[0] == "dark")
		printTheme(cmd.OutOrStdout(), a.ui.DarkMode())
		return nil
	}),
}

func printTheme(out io.Writer, dark bool) {
	if dark {
		fmt.Fprintln(out, "dark")
		return
	}
	fmt.Fprintln(out, "light")
}
