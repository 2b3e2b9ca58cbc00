package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectID   = errors.New("invalid project ID")
	ErrEmptyProjectID     = errors.New("project ID cannot be empty")
	ErrEmptyTitle         = errors.New("project title cannot be empty")
	ErrEmptyFilePath      = errors.New("file path cannot be empty")
	ErrUnsupportedFormat  = errors.New("unsupported manuscript format")
	ErrNegativeWordCount  = errors.New("word count cannot be negative")
	ErrTimestampsReversed = errors.New("last modified precedes creation")
)

// Project is a novel tracked by the catalog.
type Project struct {
	ID           string
	Title        string
	Author       string
	Genre        string
	Description  string
	WordCount    int
	ChapterCount int
	CreatedAt    time.Time
	LastModified time.Time
}

// CreateParams are the user-supplied fields of a new project.
type CreateParams struct {
	Title       string
	Author      string
	Genre       string
	Description string
}

// NewProject creates a project with a generated UUID, stamped at now.
func NewProject(params CreateParams, now time.Time) (*Project, error) {
	if params.Title == "" {
		return nil, ErrEmptyTitle
	}

	return &Project{
		ID:           uuid.New().String(),
		Title:        params.Title,
		Author:       params.Author,
		Genre:        params.Genre,
		Description:  params.Description,
		CreatedAt:    now,
		LastModified: now,
	}, nil
}

// Validate checks if the project has valid fields.
func (p *Project) Validate() error {
	if p.ID == "" {
		return ErrEmptyProjectID
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return ErrInvalidProjectID
	}
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if p.WordCount < 0 || p.ChapterCount < 0 {
		return ErrNegativeWordCount
	}
	if p.LastModified.Before(p.CreatedAt) {
		return ErrTimestampsReversed
	}
	return nil
}

func (p *Project) clone() *Project {
	c := *p
	return &c
}
