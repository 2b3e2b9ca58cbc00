package project

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/facebookgo/clock"
)

// Catalog holds projects in memory. It is safe for concurrent use.
// Returned projects are copies.
type Catalog struct {
	mu       sync.RWMutex
	projects map[string]*Project
	clock    clock.Clock
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(cat *Catalog) { cat.clock = c }
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		projects: make(map[string]*Project),
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create adds a new project.
func (c *Catalog) Create(ctx context.Context, params CreateParams) (*Project, error) {
	p, err := NewProject(params, c.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[p.ID] = p

	return p.clone(), nil
}

// Get retrieves a project by ID.
func (c *Catalog) Get(ctx context.Context, id string) (*Project, error) {
	if id == "" {
		return nil, ErrEmptyProjectID
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p.clone(), nil
}

// List returns all projects, most recently modified first. Ties are broken
// by newest creation, then by ID, so the order is stable.
func (c *Catalog) List(ctx context.Context) ([]*Project, error) {
	c.mu.RLock()
	projects := make([]*Project, 0, len(c.projects))
	for _, p := range c.projects {
		projects = append(projects, p.clone())
	}
	c.mu.RUnlock()

	sort.Slice(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.After(b.LastModified)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return projects, nil
}

// Delete removes a project by ID.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyProjectID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.projects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	delete(c.projects, id)
	return nil
}

// Touch sets a project's last-modified time to now. last_modified never
// moves backwards, even if the clock does.
func (c *Catalog) Touch(ctx context.Context, id string) (*Project, error) {
	if id == "" {
		return nil, ErrEmptyProjectID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if now := c.clock.Now().UTC(); now.After(p.LastModified) {
		p.LastModified = now
	}
	return p.clone(), nil
}

// Len returns the number of projects.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.projects)
}
