package api

// ProjectMetadata describes one novel project as served by the backend.
// Timestamps are ISO-8601 strings assigned by the server.
type ProjectMetadata struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Genre        string `json:"genre"`
	Description  string `json:"description"`
	WordCount    int    `json:"word_count"`
	ChapterCount int    `json:"chapter_count"`
	CreatedDate  string `json:"created_date"`
	LastModified string `json:"last_modified"`
}

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Title       string `json:"title" toml:"title"`
	Author      string `json:"author" toml:"author"`
	Genre       string `json:"genre" toml:"genre"`
	Description string `json:"description" toml:"description"`
}

// ImportProjectRequest is the body of POST /api/import/novel.
type ImportProjectRequest struct {
	FilePath             string `json:"file_path"`
	Title                string `json:"title"`
	Author               string `json:"author"`
	Genre                string `json:"genre"`
	AutoGenerateMetadata bool   `json:"auto_generate_metadata"`
}

// ProjectEnvelope wraps a project in the activate and import responses.
type ProjectEnvelope struct {
	Project ProjectMetadata `json:"project"`
}
