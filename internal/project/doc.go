// Package project provides the in-memory project catalog behind the
// development backend.
//
// Each project is a novel with:
//   - a unique project ID (UUID)
//   - title, author, genre and description
//   - word and chapter counts
//   - created and last-modified timestamps
//
// The Catalog provides:
//   - Create: create a project from metadata
//   - Get: retrieve a project by ID
//   - List: all projects, most recently modified first
//   - Delete: remove a project
//   - Touch: bump last-modified, used when a project is activated
//   - Import: create a project from a plain text or markdown manuscript
package project
