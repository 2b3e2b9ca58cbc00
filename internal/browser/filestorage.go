package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/logging"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// FileStorage is a Storage persisted as a flat JSON object.
//
// Every SetItem rewrites the file atomically with 0600 permissions. Reads are
// served from an in-memory cache that Watch keeps in sync with edits made by
// other processes.
type FileStorage struct {
	path   string
	logger *logging.Logger

	mu    sync.RWMutex
	items map[string]string
}

// NewFileStorage opens (or lazily creates) the storage file at path.
func NewFileStorage(path string, logger *logging.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	s := &FileStorage{
		path:   filepath.Clean(path),
		logger: logger.Named("storage"),
		items:  make(map[string]string),
	}
	if _, err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the storage file location.
func (s *FileStorage) Path() string {
	return s.path
}

// GetItem returns the cached value stored under key.
func (s *FileStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// SetItem stores value under key and rewrites the file.
func (s *FileStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.items)
	next[key] = value
	if err := s.write(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// write replaces the file through a temp file and rename. Caller holds mu.
func (s *FileStorage) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp storage file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting storage permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}

// reload re-reads the file into the cache and reports whether it changed.
// A missing file is treated as empty. mu is held across the read so that a
// concurrent SetItem cannot be replaced by older file contents.
func (s *FileStorage) reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	items := make(map[string]string)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return false, fmt.Errorf("reading storage %s: %w", s.path, err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &items); err != nil {
			return false, fmt.Errorf("decoding storage %s: %w", s.path, err)
		}
	}

	if maps.Equal(s.items, items) {
		return false, nil
	}
	s.items = items
	return true, nil
}

// Watch reloads the cache whenever the file changes on disk until ctx is
// done. The returned channel receives a value after each reload that changed
// the cache and is closed when watching stops.
//
// The parent directory is watched because atomic rewrites replace the inode.
func (s *FileStorage) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(s.path), err)
	}

	changed := make(chan struct{}, 1)
	go s.processEvents(ctx, watcher, changed)
	return changed, nil
}

func (s *FileStorage) processEvents(ctx context.Context, watcher *fsnotify.Watcher, changed chan<- struct{}) {
	defer close(changed)
	defer watcher.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			updated, err := s.reload()
			if err != nil {
				s.logger.Warn(ctx, "failed to reload storage", zap.Error(err))
				continue
			}
			if updated {
				s.logger.Debug(ctx, "storage reloaded", zap.String("path", s.path))
				select {
				case changed <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn(ctx, "storage watcher error", zap.Error(err))
		}
	}
}
