package projectstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/browser"
	"github.com/fyrsmithlabs/hypewriter/internal/devserver"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
)

func newDevBackend(t *testing.T) *api.Client {
	t.Helper()
	srv, err := devserver.NewServer(project.NewCatalog(), logging.NewNop(), nil, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL)
}

func TestStore_AgainstDevServer(t *testing.T) {
	ctx := context.Background()
	history := browser.NewMemoryHistory("/")
	s := New(newDevBackend(t), history)

	s.LoadProjects(ctx)
	require.Empty(t, s.Error())
	assert.False(t, s.HasProjects())

	first, err := s.CreateProject(ctx, api.CreateProjectRequest{Title: "First", Author: "Ann", Genre: "Fantasy"})
	require.NoError(t, err)
	second, err := s.CreateProject(ctx, api.CreateProjectRequest{Title: "Second", Author: "Ann"})
	require.NoError(t, err)

	assert.Equal(t, []string{second.ID, first.ID}, ids(s.Projects()))
	assert.Equal(t, second.ID, currentID(s))
	assert.Equal(t, "/project/"+second.ID, history.Location())

	manuscript := filepath.Join(t.TempDir(), "the-long-road.txt")
	require.NoError(t, os.WriteFile(manuscript, []byte("Chapter 1\nIt began.\n\nChapter 2\nIt ended.\n"), 0600))

	imported, err := s.ImportProject(ctx, api.ImportProjectRequest{FilePath: manuscript, AutoGenerateMetadata: true})
	require.NoError(t, err)
	assert.NotEmpty(t, imported.Title)
	assert.Equal(t, 2, imported.ChapterCount)
	assert.Equal(t, imported.ID, currentID(s))

	require.NoError(t, s.DeleteProject(ctx, imported.ID))
	assert.Equal(t, []string{second.ID, first.ID}, ids(s.Projects()))
	assert.Equal(t, second.ID, currentID(s))

	_, err = s.SetCurrentProject(ctx, "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, "Failed to activate project: Not Found", s.Error())
	assert.Equal(t, second.ID, currentID(s))

	_, err = s.CreateProject(ctx, api.CreateProjectRequest{})
	require.Error(t, err)
	assert.Equal(t, "Failed to create project: Bad Request", s.Error())
}

func TestStore_ServerErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	s := New(api.NewClient(ts.URL), nil)
	s.LoadProjects(context.Background())

	assert.Equal(t, "Failed to load projects: Internal Server Error", s.Error())
	assert.False(t, s.IsLoading())
}
