package browser

import (
	"sort"
	"sync"
)

// HistoryEntry is one pushed history entry.
type HistoryEntry struct {
	Path  string
	State map[string]string
}

// MemoryHistory is an in-memory History with back/forward navigation.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []HistoryEntry
	index   int
	pop     listeners[string]
}

// NewMemoryHistory returns a history positioned at initial ("/" when empty).
func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{entries: []HistoryEntry{{Path: initial}}}
}

// Location returns the path of the current entry.
func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].Path
}

// PushState drops any forward entries and appends path.
func (h *MemoryHistory) PushState(state map[string]string, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], HistoryEntry{Path: path, State: copyState(state)})
	h.index = len(h.entries) - 1
}

// OnPopState registers fn for Back and Forward moves.
func (h *MemoryHistory) OnPopState(fn func(path string)) func() {
	return h.pop.add(fn)
}

// Back moves one entry back and fires pop-state listeners.
// It reports false when already at the oldest entry.
func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward and fires pop-state listeners.
func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	path := h.entries[next].Path
	h.mu.Unlock()

	h.pop.emit(path)
	return true
}

// Entries returns a copy of the history stack.
func (h *MemoryHistory) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = HistoryEntry{Path: e.Path, State: copyState(e.State)}
	}
	return out
}

// Listeners returns the number of registered pop-state listeners.
func (h *MemoryHistory) Listeners() int {
	return h.pop.len()
}

func copyState(state map[string]string) map[string]string {
	if state == nil {
		return nil
	}
	out := make(map[string]string, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}

// MemoryStorage is an in-memory Storage.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// GetItem returns the value stored under key.
func (s *MemoryStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// SetItem stores value under key. It never fails.
func (s *MemoryStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// MemoryViewport is a Viewport whose width is set by the caller.
type MemoryViewport struct {
	mu     sync.Mutex
	width  int
	resize listeners[int]
}

// NewMemoryViewport returns a viewport of the given width.
func NewMemoryViewport(width int) *MemoryViewport {
	return &MemoryViewport{width: width}
}

// Width returns the current width.
func (v *MemoryViewport) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// SetWidth changes the width and fires resize listeners.
func (v *MemoryViewport) SetWidth(width int) {
	v.mu.Lock()
	v.width = width
	v.mu.Unlock()
	v.resize.emit(width)
}

// OnResize registers fn for SetWidth calls.
func (v *MemoryViewport) OnResize(fn func(width int)) func() {
	return v.resize.add(fn)
}

// Listeners returns the number of registered resize listeners.
func (v *MemoryViewport) Listeners() int {
	return v.resize.len()
}

// StaticColorScheme is a fixed color-scheme preference.
type StaticColorScheme bool

// PrefersDark returns the fixed preference.
func (s StaticColorScheme) PrefersDark() bool { return bool(s) }

// ClassList is an in-memory Document.
type ClassList struct {
	mu      sync.Mutex
	classes map[string]struct{}
}

// NewClassList returns an empty class list.
func NewClassList() *ClassList {
	return &ClassList{classes: make(map[string]struct{})}
}

// AddClass adds name to the list.
func (c *ClassList) AddClass(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[name] = struct{}{}
}

// RemoveClass removes name from the list.
func (c *ClassList) RemoveClass(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.classes, name)
}

// HasClass reports whether name is in the list.
func (c *ClassList) HasClass(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.classes[name]
	return ok
}

// Classes returns the class names in sorted order.
func (c *ClassList) Classes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.classes))
	for name := range c.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
