package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Chapter is one detected chapter of a manuscript.
type Chapter struct {
	Number  int
	Title   string
	Content string
}

// ImportParams describe a manuscript import.
type ImportParams struct {
	FilePath             string
	Title                string
	Author               string
	Genre                string
	AutoGenerateMetadata bool
}

// supportedExtensions lists the manuscript formats Import reads.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

var (
	chapterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*chapter\s+(\d+)\s*:?\s*(.*)$`),
		regexp.MustCompile(`(?i)^\s*chapter\s+(\w+)\s*:?\s*(.*)$`),
		regexp.MustCompile(`^\s*(\d+)\.\s*(.*)$`),
		regexp.MustCompile(`(?i)^\s*part\s+(\d+)\s*:?\s*(.*)$`),
	}
	byAuthorPattern  = regexp.MustCompile(`(?i)^by\s+(.+)$`)
	wordCountPattern = regexp.MustCompile(`(?i)\d+\s+words?`)
)

// Import reads a manuscript from disk and adds it as a new project with word
// and chapter counts filled in.
//
// With AutoGenerateMetadata, a missing title is derived from the file name
// and a missing author from a "by <name>" line near the top of the text.
func (c *Catalog) Import(ctx context.Context, params ImportParams) (*Project, error) {
	if params.FilePath == "" {
		return nil, ErrEmptyFilePath
	}
	ext := strings.ToLower(filepath.Ext(params.FilePath))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, params.FilePath)
	}

	data, err := os.ReadFile(params.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manuscript: %w", err)
	}
	text := string(data)

	title, author := params.Title, params.Author
	if params.AutoGenerateMetadata {
		if author == "" {
			author = detectAuthor(text)
		}
		if title == "" {
			title = titleFromFileName(params.FilePath)
		}
	}

	chapters := DetectChapters(text)
	words := 0
	for _, ch := range chapters {
		words += len(strings.Fields(ch.Content))
	}

	p, err := NewProject(CreateParams{
		Title:  title,
		Author: author,
		Genre:  params.Genre,
	}, c.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to import project: %w", err)
	}
	p.WordCount = words
	p.ChapterCount = len(chapters)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[p.ID] = p

	return p.clone(), nil
}

// DetectChapters splits text on chapter headings ("Chapter 3: Title",
// "Chapter Three", "3. Title", "Part 2"). Text before the first heading is
// not part of any chapter. Text without headings is a single chapter.
func DetectChapters(text string) []Chapter {
	var (
		chapters []Chapter
		current  *Chapter
		content  []string
	)

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(content, "\n\n"))
			chapters = append(chapters, *current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, ok := matchHeading(line); ok {
			flush()
			number := len(chapters) + 1
			if title == "" {
				title = fmt.Sprintf("Chapter %d", number)
			}
			current = &Chapter{Number: number, Title: title}
			content = nil
			continue
		}
		content = append(content, line)
	}
	flush()

	if len(chapters) == 0 {
		return []Chapter{{Number: 1, Title: "Chapter 1", Content: strings.TrimSpace(text)}}
	}
	return chapters
}

func matchHeading(line string) (string, bool) {
	for _, re := range chapterPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[2]), true
		}
	}
	return "", false
}

// detectAuthor looks for a "by <name>" line among the first 20 lines.
func detectAuthor(text string) string {
	lines := strings.SplitN(text, "\n", 21)
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		if m := byAuthorPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// titleFromFileName turns "the-long_winter.txt" into "The Long Winter".
func titleFromFileName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	stem = wordCountPattern.ReplaceAllString(stem, "")

	words := strings.Fields(stem)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
