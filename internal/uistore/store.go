// Package uistore holds cross-cutting UI state: the current route, sidebar,
// global loading flag, active modal, auto-dismissing toasts, dark mode and
// device class.
package uistore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/browser"
	"github.com/fyrsmithlabs/hypewriter/internal/config"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/observable"
	"github.com/fyrsmithlabs/hypewriter/internal/toast"
)

const (
	// DarkModeKey is the durable storage key of the dark mode preference.
	DarkModeKey = "darkMode"
	// DarkClass is the root class applied while dark mode is on.
	DarkClass = "dark"
	// DefaultSection is the project section shown when the route names none.
	DefaultSection = "overview"

	projectPrefix = "/project/"
)

// Environment is the host the store reads from and writes to. Nil members
// are replaced by in-memory implementations.
type Environment struct {
	History     browser.History
	Storage     browser.Storage
	Viewport    browser.Viewport
	ColorScheme browser.ColorScheme
	Document    browser.Document
}

// Toast is a UI notification with a title and optional auto-dismiss.
type Toast struct {
	ID         string
	Type       toast.Type
	Title      string
	Message    string
	Duration   *time.Duration
	Persistent bool
}

// ToastInput is a Toast without an id. A nil Duration takes the store's
// default; a zero Duration never auto-dismisses.
type ToastInput struct {
	Type       toast.Type
	Title      string
	Message    string
	Duration   *time.Duration
	Persistent bool
}

// State is the UI record. ActiveModal is empty when no modal is open.
type State struct {
	CurrentRoute  string
	SidebarOpen   bool
	GlobalLoading bool
	ActiveModal   string
	Toasts        []Toast
	DarkMode      bool
	IsMobile      bool
}

func (s State) clone() State {
	toasts := make([]Toast, len(s.Toasts))
	for i, t := range s.Toasts {
		if t.Duration != nil {
			d := *t.Duration
			t.Duration = &d
		}
		toasts[i] = t
	}
	s.Toasts = toasts
	return s
}

// Store is the UI store. Construct with New.
type Store struct {
	state  *observable.Value[State]
	env    Environment
	clock  clock.Clock
	logger *logging.Logger

	mobileBreakpoint int
	toastDuration    time.Duration

	mu     sync.Mutex
	timers map[string]*clock.Timer
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for toast ids and auto-dismiss timers.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMobileBreakpoint sets the width below which the viewport is mobile.
func WithMobileBreakpoint(width int) Option {
	return func(s *Store) { s.mobileBreakpoint = width }
}

// WithToastDuration sets the default auto-dismiss duration.
func WithToastDuration(d time.Duration) Option {
	return func(s *Store) { s.toastDuration = d }
}

// WithConfig applies the ui section of the application config.
func WithConfig(cfg config.UIConfig) Option {
	return func(s *Store) {
		if cfg.MobileBreakpoint > 0 {
			s.mobileBreakpoint = cfg.MobileBreakpoint
		}
		if cfg.ToastDuration > 0 {
			s.toastDuration = cfg.ToastDuration.Duration()
		}
	}
}

// New returns a store in its initial state: route "/", everything closed,
// light mode, not mobile. Call Initialize to sync with the environment.
func New(env Environment, opts ...Option) *Store {
	if env.History == nil {
		env.History = browser.NewMemoryHistory("/")
	}
	if env.Storage == nil {
		env.Storage = browser.NewMemoryStorage()
	}
	if env.Viewport == nil {
		env.Viewport = browser.NewMemoryViewport(1024)
	}
	if env.ColorScheme == nil {
		env.ColorScheme = browser.StaticColorScheme(false)
	}
	if env.Document == nil {
		env.Document = browser.NewClassList()
	}

	s := &Store{
		state:            observable.New(State{CurrentRoute: "/"}, State.clone),
		env:              env,
		clock:            clock.New(),
		logger:           logging.NewNop(),
		mobileBreakpoint: config.DefaultMobileBreakpoint,
		toastDuration:    config.DefaultToastDuration,
		timers:           make(map[string]*clock.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe calls fn with the current state now and after every change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	return s.state.Get()
}

func (s *Store) update(fn func(*State)) State {
	return s.state.Update(func(st State) State {
		fn(&st)
		return st
	})
}

// Initialize seeds the route from the history location, follows
// back/forward navigation, loads the dark mode preference (falling back to
// the color scheme) and tracks the viewport width. The returned teardown
// removes the listeners and cancels pending toast timers.
func (s *Store) Initialize() (teardown func()) {
	s.update(func(st *State) { st.CurrentRoute = s.env.History.Location() })

	unPop := s.env.History.OnPopState(func(path string) {
		s.update(func(st *State) { st.CurrentRoute = path })
	})

	saved, ok := s.env.Storage.GetItem(DarkModeKey)
	if ok {
		s.SetDarkMode(saved == "true")
	} else {
		s.SetDarkMode(s.env.ColorScheme.PrefersDark())
	}

	s.updateMobileStatus(s.env.Viewport.Width())
	unResize := s.env.Viewport.OnResize(s.updateMobileStatus)

	var once sync.Once
	return func() {
		once.Do(func() {
			unPop()
			unResize()
			s.stopTimers()
		})
	}
}

// SetCurrentRoute updates the route and closes the sidebar on mobile.
func (s *Store) SetCurrentRoute(route string) {
	s.update(func(st *State) {
		st.CurrentRoute = route
		if st.IsMobile {
			st.SidebarOpen = false
		}
	})
}

// NavigateTo optionally pushes path onto the history, then updates the route.
func (s *Store) NavigateTo(path string, pushState bool) {
	if pushState {
		s.env.History.PushState(map[string]string{}, path)
	}
	s.update(func(st *State) { st.CurrentRoute = path })
}

// ToggleSidebar flips the sidebar between open and closed.
func (s *Store) ToggleSidebar() {
	s.update(func(st *State) { st.SidebarOpen = !st.SidebarOpen })
}

// OpenSidebar opens the sidebar.
func (s *Store) OpenSidebar() {
	s.update(func(st *State) { st.SidebarOpen = true })
}

// CloseSidebar closes the sidebar.
func (s *Store) CloseSidebar() {
	s.update(func(st *State) { st.SidebarOpen = false })
}

// SetGlobalLoading sets the app-wide loading flag.
func (s *Store) SetGlobalLoading(loading bool) {
	s.update(func(st *State) { st.GlobalLoading = loading })
}

// OpenModal makes id the active modal, replacing any open one.
func (s *Store) OpenModal(id string) {
	s.update(func(st *State) { st.ActiveModal = id })
}

// CloseModal clears the active modal.
func (s *Store) CloseModal() {
	s.update(func(st *State) { st.ActiveModal = "" })
}

// AddToast appends a toast and returns its id. Unless the toast is
// persistent or its duration is zero, it is removed once the duration
// elapses.
func (s *Store) AddToast(in ToastInput) string {
	duration := s.toastDuration
	if in.Duration != nil {
		duration = *in.Duration
	}
	t := Toast{
		ID:         s.newToastID(),
		Type:       in.Type,
		Title:      in.Title,
		Message:    in.Message,
		Duration:   &duration,
		Persistent: in.Persistent,
	}

	s.update(func(st *State) { st.Toasts = append(st.Toasts, t) })

	if !t.Persistent && duration > 0 {
		s.mu.Lock()
		s.timers[t.ID] = s.clock.AfterFunc(duration, func() { s.expire(t.ID) })
		s.mu.Unlock()
	}
	return t.ID
}

func (s *Store) newToastID() string {
	return fmt.Sprintf("toast-%d-%s", s.clock.Now().UnixMilli(), uuid.NewString()[:8])
}

func (s *Store) expire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()
	s.removeToast(id)
}

// RemoveToast drops the toast and cancels its pending timer.
func (s *Store) RemoveToast(id string) {
	s.mu.Lock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.removeToast(id)
}

func (s *Store) removeToast(id string) {
	s.update(func(st *State) {
		st.Toasts = slices.DeleteFunc(st.Toasts, func(t Toast) bool { return t.ID == id })
	})
}

// ClearAllToasts drops every toast and cancels all pending timers.
func (s *Store) ClearAllToasts() {
	s.stopTimers()
	s.update(func(st *State) { st.Toasts = nil })
}

// PendingTimers returns the number of scheduled auto-dismissals.
func (s *Store) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Store) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// ShowSuccess adds a success toast with the default duration.
func (s *Store) ShowSuccess(title, message string) string {
	return s.AddToast(ToastInput{Type: toast.Success, Title: title, Message: message})
}

// ShowError adds a persistent error toast.
func (s *Store) ShowError(title, message string) string {
	return s.AddToast(ToastInput{Type: toast.Error, Title: title, Message: message, Persistent: true})
}

// ShowWarning adds a warning toast with the default duration.
func (s *Store) ShowWarning(title, message string) string {
	return s.AddToast(ToastInput{Type: toast.Warning, Title: title, Message: message})
}

// ShowInfo adds an info toast with the default duration.
func (s *Store) ShowInfo(title, message string) string {
	return s.AddToast(ToastInput{Type: toast.Info, Title: title, Message: message})
}

// ToggleDarkMode flips dark mode, then applies and persists it.
func (s *Store) ToggleDarkMode() {
	st := s.update(func(st *State) { st.DarkMode = !st.DarkMode })
	s.applyTheme(st.DarkMode)
}

// SetDarkMode sets dark mode, then applies and persists it.
func (s *Store) SetDarkMode(enabled bool) {
	s.update(func(st *State) { st.DarkMode = enabled })
	s.applyTheme(enabled)
}

func (s *Store) applyTheme(dark bool) {
	if dark {
		s.env.Document.AddClass(DarkClass)
	} else {
		s.env.Document.RemoveClass(DarkClass)
	}
	if err := s.env.Storage.SetItem(DarkModeKey, fmt.Sprint(dark)); err != nil {
		s.logger.Warn(context.Background(), "failed to persist dark mode", zap.Error(err))
	}
}

func (s *Store) updateMobileStatus(width int) {
	s.update(func(st *State) { st.IsMobile = width < s.mobileBreakpoint })
}

// CurrentRoute returns the route mirrored from the history location.
func (s *Store) CurrentRoute() string { return s.Snapshot().CurrentRoute }

// SidebarOpen reports whether the sidebar is open.
func (s *Store) SidebarOpen() bool { return s.Snapshot().SidebarOpen }

// GlobalLoading reports the app-wide loading flag.
func (s *Store) GlobalLoading() bool { return s.Snapshot().GlobalLoading }

// ActiveModal returns the open modal id, or "".
func (s *Store) ActiveModal() string { return s.Snapshot().ActiveModal }

// Toasts returns a copy of the visible toasts.
func (s *Store) Toasts() []Toast { return s.Snapshot().Toasts }

// DarkMode reports whether dark mode is on.
func (s *Store) DarkMode() bool { return s.Snapshot().DarkMode }

// IsMobile reports whether the viewport is below the mobile breakpoint.
func (s *Store) IsMobile() bool { return s.Snapshot().IsMobile }

// IsHomePage reports whether the route is "/".
func (s *Store) IsHomePage() bool {
	return s.CurrentRoute() == "/"
}

// IsProjectPage reports whether the route is under /project/.
func (s *Store) IsProjectPage() bool {
	return strings.HasPrefix(s.CurrentRoute(), projectPrefix)
}

// CurrentProjectID returns the id segment of /project/{id}[/...].
func (s *Store) CurrentProjectID() (string, bool) {
	id, _, ok := projectRoute(s.CurrentRoute())
	return id, ok
}

// CurrentProjectSection returns the remainder of /project/{id}/{section},
// or DefaultSection when there is none.
func (s *Store) CurrentProjectSection() string {
	_, section, ok := projectRoute(s.CurrentRoute())
	if !ok || section == "" {
		return DefaultSection
	}
	return section
}

// projectRoute splits /project/{id}/{section}. The section keeps any
// further slashes.
func projectRoute(route string) (id, section string, ok bool) {
	rest, found := strings.CutPrefix(route, projectPrefix)
	if !found {
		return "", "", false
	}
	id, section, _ = strings.Cut(rest, "/")
	if id == "" {
		return "", "", false
	}
	return id, section, true
}
