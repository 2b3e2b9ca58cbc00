package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/tui"
	"github.com/fyrsmithlabs/hypewriter/internal/uistore"
)

func init() {
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	Long: `Open the interactive terminal UI.

Keys:
  j/k     move            enter  open project
  n       new project     i      import manuscript
  d       delete project  t      toggle dark mode
  s       toggle sidebar  r      reload
  x       clear toasts    q      quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, uistore.WithMobileBreakpoint(tui.MobileBreakpoint))
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx)) //nolint:errcheck

	teardown := a.ui.Initialize()
	defer teardown()

	go followStorage(ctx, a)

	model := tui.NewModel(ctx, tui.Config{
		Projects: a.projects,
		Toasts:   a.toasts,
		UI:       a.ui,
		History:  a.history,
		Viewport: a.viewport,
		Logger:   a.logger,

		ToastDuration: a.cfg.UI.ToastDuration.Duration(),
	})
	return tui.Run(ctx, model)
}

// followStorage applies dark mode changes made by other hypewriter
// processes, e.g. `hypewriter theme toggle` in another terminal.
func followStorage(ctx context.Context, a *app) {
	changes, err := a.storage.Watch(ctx)
	if err != nil {
		a.logger.Warn(ctx, "storage watch unavailable", zap.Error(err))
		return
	}
	for range changes {
		saved, ok := a.storage.GetItem(uistore.DarkModeKey)
		if !ok {
			continue
		}
		if dark := saved == "true"; dark != a.ui.DarkMode() {
			a.ui.SetDarkMode(dark)
		}
	}
}
