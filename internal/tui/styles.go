package tui

import "github.com/charmbracelet/lipgloss"

// theme is the set of styles for one color mode.
type theme struct {
	header    lipgloss.Style
	section   lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	dim       lipgloss.Style
	selected  lipgloss.Style
	current   lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	errorText lipgloss.Style
	info      lipgloss.Style
	container lipgloss.Style
	sidebar   lipgloss.Style
	footer    lipgloss.Style
	footerKey lipgloss.Style
	sparkline lipgloss.Style
}

// palette names the colors a theme is built from.
type palette struct {
	accent, accentBg, label, value, dim, border, selectedBg lipgloss.Color
	success, warning, errorText, info                      lipgloss.Color
}

var (
	// k9s-inspired palette on dark terminals.
	darkPalette = palette{
		accent:     lipgloss.Color("51"),
		accentBg:   lipgloss.Color("51"),
		label:      lipgloss.Color("45"),
		value:      lipgloss.Color("231"),
		dim:        lipgloss.Color("245"),
		border:     lipgloss.Color("238"),
		selectedBg: lipgloss.Color("236"),
		success:    lipgloss.Color("46"),
		warning:    lipgloss.Color("226"),
		errorText:  lipgloss.Color("196"),
		info:       lipgloss.Color("39"),
	}

	lightPalette = palette{
		accent:     lipgloss.Color("25"),
		accentBg:   lipgloss.Color("153"),
		label:      lipgloss.Color("24"),
		value:      lipgloss.Color("16"),
		dim:        lipgloss.Color("242"),
		border:     lipgloss.Color("250"),
		selectedBg: lipgloss.Color("254"),
		success:    lipgloss.Color("28"),
		warning:    lipgloss.Color("130"),
		errorText:  lipgloss.Color("160"),
		info:       lipgloss.Color("25"),
	}
)

func newTheme(dark bool) theme {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	return theme{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(p.accentBg).
			Bold(true).
			Padding(0, 1),
		section: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		label: lipgloss.NewStyle().
			Foreground(p.label),
		value: lipgloss.NewStyle().
			Foreground(p.value).
			Bold(true),
		dim: lipgloss.NewStyle().
			Foreground(p.dim),
		selected: lipgloss.NewStyle().
			Foreground(p.value).
			Background(p.selectedBg).
			Bold(true),
		current: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		success: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		warning: lipgloss.NewStyle().
			Foreground(p.warning).
			Bold(true),
		errorText: lipgloss.NewStyle().
			Foreground(p.errorText).
			Bold(true),
		info: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(p.border).
			PaddingRight(2).
			MarginRight(2),
		footer: lipgloss.NewStyle().
			Foreground(p.dim).
			MarginTop(1),
		footerKey: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		sparkline: lipgloss.NewStyle().
			Foreground(p.accent),
	}
}
