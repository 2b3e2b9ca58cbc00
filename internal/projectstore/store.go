// Package projectstore holds the set of known projects and the active one,
// mirrors every change to subscribers and keeps the history location in
// step with the active project.
//
// Mutating operations follow one pattern: raise the relevant loading flag,
// clear the error, issue the request, apply the result on success, record
// the failure message otherwise, and always lower the flag. LoadProjects
// swallows failures after recording them; the write operations also return
// them.
package projectstore

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/browser"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/observable"
)

// Fallback messages recorded when an error carries no text.
const (
	MsgLoadFailed   = "Failed to load projects"
	MsgSwitchFailed = "Failed to switch project"
	MsgCreateFailed = "Failed to create project"
	MsgDeleteFailed = "Failed to delete project"
	MsgImportFailed = "Failed to import project"
)

const projectPrefix = "/project/"

// Backend is the REST surface the store consumes. *api.Client implements it.
type Backend interface {
	ListProjects(ctx context.Context) ([]api.ProjectMetadata, error)
	ActivateProject(ctx context.Context, id string) (api.ProjectMetadata, error)
	CreateProject(ctx context.Context, req api.CreateProjectRequest) (api.ProjectMetadata, error)
	DeleteProject(ctx context.Context, id string) error
	ImportNovel(ctx context.Context, req api.ImportProjectRequest) (api.ProjectMetadata, error)
}

// State is the project record. CurrentProject is nil when none is active
// and Error is empty when there is no failure to show.
type State struct {
	CurrentProject   *api.ProjectMetadata
	Projects         []api.ProjectMetadata
	IsLoading        bool
	IsProjectLoading bool
	Error            string
	ShowCreateModal  bool
	ShowImportModal  bool
}

func (s State) clone() State {
	if s.CurrentProject != nil {
		p := *s.CurrentProject
		s.CurrentProject = &p
	}
	s.Projects = slices.Clone(s.Projects)
	if s.Projects == nil {
		s.Projects = []api.ProjectMetadata{}
	}
	return s
}

// Store is the project store. Construct with New.
type Store struct {
	state   *observable.Value[State]
	backend Backend
	history browser.History
	logger  *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger failures are reported to.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store backed by backend. A nil history is replaced
// by an in-memory one positioned at "/".
func New(backend Backend, history browser.History, opts ...Option) *Store {
	if history == nil {
		history = browser.NewMemoryHistory("/")
	}
	s := &Store{
		state:   observable.New(State{}, State.clone),
		backend: backend,
		history: history,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("projectstore")
	return s
}

// Subscribe calls fn with the current state now and after every change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	return s.state.Get()
}

func (s *Store) update(fn func(*State)) State {
	return s.state.Update(func(st State) State {
		fn(&st)
		return st
	})
}

// fail records err as the user-facing message and logs it.
func (s *Store) fail(ctx context.Context, err error, fallback, logMsg string) {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	s.update(func(st *State) { st.Error = msg })
	s.logger.Error(ctx, logMsg, zap.Error(err))
}

// LoadProjects replaces the project list with the backend's. When no
// project is active the first one is activated. Failures are recorded in
// State.Error, never returned.
func (s *Store) LoadProjects(ctx context.Context) {
	s.loadProjects(ctx, true)
}

func (s *Store) loadProjects(ctx context.Context, activateFirst bool) {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	defer s.update(func(st *State) { st.IsLoading = false })

	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		s.fail(ctx, err, MsgLoadFailed, "error loading projects")
		return
	}

	st := s.update(func(st *State) { st.Projects = projects })
	s.logger.Debug(ctx, "projects loaded", zap.Int("count", len(projects)))

	if activateFirst && st.CurrentProject == nil && len(st.Projects) > 0 {
		// Activation failures are already recorded.
		_, _ = s.SetCurrentProject(ctx, st.Projects[0].ID)
	}
}

// SetCurrentProject activates id on the backend, stores the returned record
// as the current project and pushes /project/{id} onto the history.
func (s *Store) SetCurrentProject(ctx context.Context, id string) (api.ProjectMetadata, error) {
	ctx = logging.WithProjectID(ctx, id)
	s.update(func(st *State) {
		st.IsProjectLoading = true
		st.Error = ""
	})
	defer s.update(func(st *State) { st.IsProjectLoading = false })

	project, err := s.backend.ActivateProject(ctx, id)
	if err != nil {
		s.fail(ctx, err, MsgSwitchFailed, "error setting current project")
		return api.ProjectMetadata{}, err
	}

	s.update(func(st *State) { st.CurrentProject = &project })
	s.history.PushState(map[string]string{"projectId": id}, projectPrefix+id)
	s.logger.Info(ctx, "project activated", zap.String("title", project.Title))
	return project, nil
}

// CreateProject creates a project, prepends it to the list, activates it
// and closes the create modal. A failed activation is recorded but does not
// fail the creation.
func (s *Store) CreateProject(ctx context.Context, req api.CreateProjectRequest) (api.ProjectMetadata, error) {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	defer s.update(func(st *State) { st.IsLoading = false })

	project, err := s.backend.CreateProject(ctx, req)
	if err != nil {
		s.fail(ctx, err, MsgCreateFailed, "error creating project")
		return api.ProjectMetadata{}, err
	}

	s.prepend(project)
	_, _ = s.SetCurrentProject(ctx, project.ID)
	s.update(func(st *State) { st.ShowCreateModal = false })
	return project, nil
}

// ImportProject imports a manuscript as a project, prepends it, activates it
// and closes the import modal.
func (s *Store) ImportProject(ctx context.Context, req api.ImportProjectRequest) (api.ProjectMetadata, error) {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	defer s.update(func(st *State) { st.IsLoading = false })

	project, err := s.backend.ImportNovel(ctx, req)
	if err != nil {
		s.fail(ctx, err, MsgImportFailed, "error importing project")
		return api.ProjectMetadata{}, err
	}

	s.prepend(project)
	_, _ = s.SetCurrentProject(ctx, project.ID)
	s.update(func(st *State) { st.ShowImportModal = false })
	return project, nil
}

func (s *Store) prepend(project api.ProjectMetadata) {
	s.update(func(st *State) {
		st.Projects = append([]api.ProjectMetadata{project}, st.Projects...)
	})
}

// DeleteProject deletes id and drops it from the list. When it was the
// current project, the new first project is activated, or the history goes
// back to "/" when none remain.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	ctx = logging.WithProjectID(ctx, id)
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	defer s.update(func(st *State) { st.IsLoading = false })

	if err := s.backend.DeleteProject(ctx, id); err != nil {
		s.fail(ctx, err, MsgDeleteFailed, "error deleting project")
		return err
	}

	var wasCurrent bool
	st := s.update(func(st *State) {
		st.Projects = slices.DeleteFunc(st.Projects, func(p api.ProjectMetadata) bool { return p.ID == id })
		if st.CurrentProject != nil && st.CurrentProject.ID == id {
			st.CurrentProject = nil
			wasCurrent = true
		}
	})
	s.logger.Info(ctx, "project deleted")

	if wasCurrent {
		if len(st.Projects) > 0 {
			_, _ = s.SetCurrentProject(ctx, st.Projects[0].ID)
		} else {
			s.history.PushState(map[string]string{}, "/")
		}
	}
	return nil
}

// Initialize loads the projects and syncs the current project with the
// history location. A /project/{id} location takes precedence over the
// default first-project activation: a known id is activated, an unknown
// one sends the history back to "/" with no current project.
func (s *Store) Initialize(ctx context.Context) error {
	id, onProject := projectIDFromPath(s.history.Location())
	s.loadProjects(ctx, !onProject)
	if !onProject {
		return nil
	}

	known := slices.ContainsFunc(s.Snapshot().Projects, func(p api.ProjectMetadata) bool { return p.ID == id })
	if !known {
		s.logger.Warn(ctx, "project in location not found", zap.String("project_id", id))
		s.history.PushState(map[string]string{}, "/")
		return nil
	}
	_, err := s.SetCurrentProject(ctx, id)
	return err
}

func projectIDFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, projectPrefix)
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	return id, id != ""
}

// OpenCreateModal shows the create-project modal.
func (s *Store) OpenCreateModal() {
	s.update(func(st *State) { st.ShowCreateModal = true })
}

// CloseCreateModal hides the create-project modal.
func (s *Store) CloseCreateModal() {
	s.update(func(st *State) { st.ShowCreateModal = false })
}

// OpenImportModal shows the import modal.
func (s *Store) OpenImportModal() {
	s.update(func(st *State) { st.ShowImportModal = true })
}

// CloseImportModal hides the import modal.
func (s *Store) CloseImportModal() {
	s.update(func(st *State) { st.ShowImportModal = false })
}

// ClearError drops the recorded error message.
func (s *Store) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

// HasProjects reports whether any project is known.
func (s *Store) HasProjects() bool {
	return len(s.Snapshot().Projects) > 0
}

// CurrentProjectIndex returns the position of the current project in the
// list, or -1 when there is none or it is not listed.
func (s *Store) CurrentProjectIndex() int {
	st := s.Snapshot()
	if st.CurrentProject == nil {
		return -1
	}
	id := st.CurrentProject.ID
	return slices.IndexFunc(st.Projects, func(p api.ProjectMetadata) bool { return p.ID == id })
}

// CurrentProject returns the active project, if any.
func (s *Store) CurrentProject() (api.ProjectMetadata, bool) {
	st := s.Snapshot()
	if st.CurrentProject == nil {
		return api.ProjectMetadata{}, false
	}
	return *st.CurrentProject, true
}

// Projects returns a copy of the project list, newest first.
func (s *Store) Projects() []api.ProjectMetadata { return s.Snapshot().Projects }

// IsLoading reports whether the project list is being fetched.
func (s *Store) IsLoading() bool { return s.Snapshot().IsLoading }

// IsProjectLoading reports whether a project call is in flight.
func (s *Store) IsProjectLoading() bool { return s.Snapshot().IsProjectLoading }

// Error returns the last recorded user-facing error, or "".
func (s *Store) Error() string { return s.Snapshot().Error }

// ShowCreateModal reports whether the create modal is open.
func (s *Store) ShowCreateModal() bool { return s.Snapshot().ShowCreateModal }

// ShowImportModal reports whether the import modal is open.
func (s *Store) ShowImportModal() bool { return s.Snapshot().ShowImportModal }
