// Package toast holds an ordered list of notification messages with
// publish/subscribe access. Toasts never expire on their own; the render
// layer removes them.
package toast

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/hypewriter/internal/observable"
)

// Type is the severity of a toast.
type Type string

const (
	Info    Type = "info"
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
)

// DefaultErrorDuration is the display duration of error toasts when the
// caller gives none.
const DefaultErrorDuration = 6000 * time.Millisecond

// Toast is one notification. Duration is a display hint for the render
// layer; nil means the renderer decides.
type Toast struct {
	ID       string
	Message  string
	Type     Type
	Duration *time.Duration
}

// Store is the toast list. The zero value is not usable; call New.
type Store struct {
	toasts        *observable.Value[[]Toast]
	errorDuration time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithErrorDuration overrides DefaultErrorDuration.
func WithErrorDuration(d time.Duration) Option {
	return func(s *Store) { s.errorDuration = d }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		toasts:        observable.New([]Toast{}, cloneToasts),
		errorDuration: DefaultErrorDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cloneToasts(in []Toast) []Toast {
	out := make([]Toast, len(in))
	for i, t := range in {
		if t.Duration != nil {
			d := *t.Duration
			t.Duration = &d
		}
		out[i] = t
	}
	return out
}

// Subscribe calls fn with the current list now and after every change.
func (s *Store) Subscribe(fn func([]Toast)) (unsubscribe func()) {
	return s.toasts.Subscribe(fn)
}

// Toasts returns a copy of the current list.
func (s *Store) Toasts() []Toast {
	return s.toasts.Get()
}

// Add appends t under a fresh id and returns the id. Any ID set by the
// caller is replaced.
func (s *Store) Add(t Toast) string {
	t.ID = uuid.NewString()
	s.toasts.Update(func(list []Toast) []Toast {
		return append(list, t)
	})
	return t.ID
}

// Remove drops the toast with id. Unknown ids still notify subscribers.
func (s *Store) Remove(id string) {
	s.toasts.Update(func(list []Toast) []Toast {
		return slices.DeleteFunc(list, func(t Toast) bool { return t.ID == id })
	})
}

// Clear drops every toast.
func (s *Store) Clear() {
	s.toasts.Set([]Toast{})
}

// Info adds an info toast. duration is passed through unchanged.
func (s *Store) Info(message string, duration *time.Duration) string {
	return s.Add(Toast{Message: message, Type: Info, Duration: duration})
}

// Success adds a success toast. duration is passed through unchanged.
func (s *Store) Success(message string, duration *time.Duration) string {
	return s.Add(Toast{Message: message, Type: Success, Duration: duration})
}

// Warning adds a warning toast. duration is passed through unchanged.
func (s *Store) Warning(message string, duration *time.Duration) string {
	return s.Add(Toast{Message: message, Type: Warning, Duration: duration})
}

// Error adds an error toast, defaulting its duration when nil.
func (s *Store) Error(message string, duration *time.Duration) string {
	if duration == nil {
		d := s.errorDuration
		duration = &d
	}
	return s.Add(Toast{Message: message, Type: Error, Duration: duration})
}

// Millis is a convenience for building a duration argument.
func Millis(ms int) *time.Duration {
	d := time.Duration(ms) * time.Millisecond
	return &d
}
