package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/devserver"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
	"github.com/fyrsmithlabs/hypewriter/internal/telemetry"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := devserver.NewServer(project.NewCatalog(), logging.NewNop(), nil, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newBackend(t)
	client := api.NewClient(ts.URL + "/")

	assert.Equal(t, ts.URL, client.BaseURL())

	projects, err := client.ListProjects(ctx)
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)

	created, err := client.CreateProject(ctx, api.CreateProjectRequest{
		Title:       "Draft",
		Author:      "Me",
		Genre:       "mystery",
		Description: "A test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft", created.Title)
	assert.Equal(t, "mystery", created.Genre)
	assert.NotEmpty(t, created.CreatedDate)

	activated, err := client.ActivateProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, activated.ID)

	projects, err = client.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	require.NoError(t, client.DeleteProject(ctx, created.ID))

	projects, err = client.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestClient_StatusError(t *testing.T) {
	ctx := context.Background()
	client := api.NewClient(newBackend(t).URL)

	_, err := client.ActivateProject(ctx, "missing")
	require.Error(t, err)

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, api.OpActivateProject, se.Op)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Failed to activate project: Not Found", err.Error())

	err = client.DeleteProject(ctx, "missing")
	assert.EqualError(t, err, "Failed to delete project: Not Found")

	_, err = client.CreateProject(ctx, api.CreateProjectRequest{})
	assert.EqualError(t, err, "Failed to create project: Bad Request")

	_, err = client.ImportNovel(ctx, api.ImportProjectRequest{FilePath: "book.docx"})
	assert.EqualError(t, err, "Failed to import project: Bad Request")
}

func TestClient_ListServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := api.NewClient(ts.URL).ListProjects(context.Background())
	assert.EqualError(t, err, "Failed to load projects: Internal Server Error")
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := api.NewClient(url).ListProjects(context.Background())
	require.Error(t, err)

	var se *api.StatusError
	assert.False(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "load projects request failed")
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, api.WithTimeout(50*time.Millisecond))
	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
}

func TestClient_Telemetry(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	tl := logging.NewTestLogger()
	client := api.NewClient(newBackend(t).URL, api.WithTelemetry(tt.Telemetry), api.WithLogger(tl.Logger))

	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	_, err = client.ActivateProject(context.Background(), "missing")
	require.Error(t, err)

	tt.AssertSpanExists(t, "api.LoadProjects")
	tt.AssertSpanAttribute(t, "api.LoadProjects", "http.status_code", int64(200))
	tt.AssertSpanAttribute(t, "api.ActivateProject", "http.status_code", int64(404))

	got, ok := tt.CounterValue(t, "hypewriter.api.requests_total")
	require.True(t, ok)
	assert.Equal(t, int64(2), got)

	tl.AssertField(t, "api request", "path", "/api/projects")
}
