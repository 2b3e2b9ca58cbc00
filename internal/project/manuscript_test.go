package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManuscript = `The Long Winter
by Jane Doe

Chapter 1: Snow
It was cold.
Very cold indeed.

Chapter Two
The thaw came late.

3. Spring
Flowers.
`

func writeManuscript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDetectChapters(t *testing.T) {
	chapters := DetectChapters(sampleManuscript)
	require.Len(t, chapters, 3)

	assert.Equal(t, Chapter{Number: 1, Title: "Snow", Content: "It was cold.\n\nVery cold indeed."}, chapters[0])
	assert.Equal(t, "Chapter 2", chapters[1].Title)
	assert.Equal(t, "The thaw came late.", chapters[1].Content)
	assert.Equal(t, "Spring", chapters[2].Title)
}

func TestDetectChapters_NoHeadings(t *testing.T) {
	chapters := DetectChapters("  just some prose  \n")
	require.Len(t, chapters, 1)
	assert.Equal(t, "Chapter 1", chapters[0].Title)
	assert.Equal(t, "just some prose", chapters[0].Content)
}

func TestCatalog_Import(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	path := writeManuscript(t, "the-long_winter.txt", sampleManuscript)

	p, err := cat.Import(ctx, ImportParams{
		FilePath:             path,
		Genre:                "fantasy",
		AutoGenerateMetadata: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "The Long Winter", p.Title)
	assert.Equal(t, "Jane Doe", p.Author)
	assert.Equal(t, "fantasy", p.Genre)
	assert.Equal(t, 3, p.ChapterCount)
	assert.Equal(t, 11, p.WordCount)
	assert.Equal(t, 1, cat.Len())
}

func TestCatalog_ImportKeepsExplicitMetadata(t *testing.T) {
	cat, _ := newTestCatalog()
	path := writeManuscript(t, "draft.md", sampleManuscript)

	p, err := cat.Import(context.Background(), ImportParams{
		FilePath:             path,
		Title:                "Given Title",
		Author:               "Given Author",
		AutoGenerateMetadata: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Given Title", p.Title)
	assert.Equal(t, "Given Author", p.Author)
}

func TestCatalog_ImportErrors(t *testing.T) {
	cat, _ := newTestCatalog()
	txt := writeManuscript(t, "draft.txt", sampleManuscript)

	tests := []struct {
		name    string
		params  ImportParams
		wantErr error
	}{
		{"empty path", ImportParams{}, ErrEmptyFilePath},
		{"unsupported format", ImportParams{FilePath: "novel.docx"}, ErrUnsupportedFormat},
		{"missing file", ImportParams{FilePath: filepath.Join(t.TempDir(), "nope.txt")}, os.ErrNotExist},
		{"no title without auto metadata", ImportParams{FilePath: txt}, ErrEmptyTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cat.Import(context.Background(), tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Import() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	assert.Equal(t, 0, cat.Len())
}

func TestTitleFromFileName(t *testing.T) {
	assert.Equal(t, "The Long Winter", titleFromFileName("/tmp/the-long_winter.txt"))
	assert.Equal(t, "Draft", titleFromFileName("DRAFT 90000 words.md"))
}
