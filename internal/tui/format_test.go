package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/hypewriter/internal/toast"
)

func TestFormatWords(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 words"},
		{1, "1 word"},
		{850, "850 words"},
		{12345, "12.3K words"},
		{2_500_000, "2.5M words"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatWords(tt.n))
	}
}

func TestFormatChapters(t *testing.T) {
	assert.Equal(t, "1 chapter", FormatChapters(1))
	assert.Equal(t, "0 chapters", FormatChapters(0))
	assert.Equal(t, "12 chapters", FormatChapters(12))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "not a time", FormatTimestamp("not a time"))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, FormatTimestamp("2024-03-01T10:30:00Z"))
}

func TestToastIcon(t *testing.T) {
	assert.Equal(t, "✓", toastIcon(toast.Success))
	assert.Equal(t, "⚠", toastIcon(toast.Warning))
	assert.Equal(t, "✗", toastIcon(toast.Error))
	assert.Equal(t, "•", toastIcon(toast.Info))
}
