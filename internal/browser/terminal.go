package browser

import "github.com/charmbracelet/lipgloss"

// TerminalColorScheme reports the terminal background as the color-scheme
// preference.
type TerminalColorScheme struct{}

// PrefersDark reports whether the terminal background is dark.
func (TerminalColorScheme) PrefersDark() bool {
	return lipgloss.HasDarkBackground()
}
