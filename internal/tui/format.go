package tui

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/hypewriter/internal/toast"
)

// FormatWords formats a word count as "850 words" or "12.3K words".
func FormatWords(n int) string {
	switch {
	case n == 1:
		return "1 word"
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM words", float64(n)/1_000_000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK words", float64(n)/1000)
	default:
		return fmt.Sprintf("%d words", n)
	}
}

// FormatChapters formats a chapter count.
func FormatChapters(n int) string {
	if n == 1 {
		return "1 chapter"
	}
	return fmt.Sprintf("%d chapters", n)
}

// FormatTimestamp renders an ISO-8601 timestamp as local "2006-01-02 15:04".
// Unparseable input is returned unchanged.
func FormatTimestamp(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("2006-01-02 15:04")
}

// toastIcon returns the glyph shown before a toast of type t.
func toastIcon(t toast.Type) string {
	switch t {
	case toast.Success:
		return "✓"
	case toast.Warning:
		return "⚠"
	case toast.Error:
		return "✗"
	default:
		return "•"
	}
}
