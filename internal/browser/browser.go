// Package browser abstracts the host environment the client stores depend
// on: navigation history, durable key/value storage, viewport size, the
// color-scheme preference and the root document element.
//
// In-memory implementations back tests and the terminal UI; FileStorage and
// SessionHistory persist state between CLI invocations.
package browser

// History is the navigation history of the host.
type History interface {
	// Location returns the current path.
	Location() string
	// PushState appends path to the history without reloading.
	PushState(state map[string]string, path string)
	// OnPopState registers fn for back/forward navigation and returns a
	// function that unregisters it.
	OnPopState(fn func(path string)) (unregister func())
}

// Storage is a durable string key/value store.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
}

// Viewport reports the visible width and its changes.
type Viewport interface {
	Width() int
	OnResize(fn func(width int)) (unregister func())
}

// ColorScheme reports the host's preferred color scheme.
type ColorScheme interface {
	PrefersDark() bool
}

// Document is the class list of the root document element.
type Document interface {
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
}
