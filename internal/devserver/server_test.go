package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
	"github.com/fyrsmithlabs/hypewriter/internal/telemetry"
)

type testServer struct {
	*Server
	clock *clock.Mock
	log   *logging.TestLogger
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	mock := clock.NewMock()
	mock.Add(time.Hour)
	tl := logging.NewTestLogger()

	srv, err := NewServer(project.NewCatalog(project.WithClock(mock)), tl.Logger, nil, nil)
	require.NoError(t, err)
	return &testServer{Server: srv, clock: mock, log: tl}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *testServer) create(t *testing.T, title string) api.ProjectMetadata {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/projects", api.CreateProjectRequest{Title: title, Author: "Author"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p api.ProjectMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestNewServer(t *testing.T) {
	t.Run("uses defaults when config is nil", func(t *testing.T) {
		srv, err := NewServer(project.NewCatalog(), logging.NewNop(), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost:8000", srv.Addr())
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(project.NewCatalog(), nil, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when catalog is nil", func(t *testing.T) {
		_, err := NewServer(nil, logging.NewNop(), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t)
	s.create(t, "One")

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Projects)
}

func TestProjectLifecycle(t *testing.T) {
	s := setupTestServer(t)

	first := s.create(t, "First")
	s.clock.Add(time.Minute)
	second := s.create(t, "Second")

	assert.Equal(t, "First", first.Title)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, first.CreatedDate, first.LastModified)

	// newest first
	rec := s.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []api.ProjectMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	// activation bumps last_modified and reorders
	s.clock.Add(time.Minute)
	rec = s.do(t, http.MethodPost, "/api/projects/"+first.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env api.ProjectEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, first.ID, env.Project.ID)
	assert.NotEqual(t, first.LastModified, env.Project.LastModified)

	rec = s.do(t, http.MethodGet, "/api/projects", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, first.ID, list[0].ID)

	rec = s.do(t, http.MethodDelete, "/api/projects/"+first.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/projects", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	s.log.AssertLogged(t, zapcore.InfoLevel, "project created")
	s.log.AssertField(t, "project deleted", "project.id", first.ID)
}

func TestHandleErrors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"activate unknown", http.MethodPost, "/api/projects/nope/activate", nil, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/projects/nope", nil, http.StatusNotFound},
		{"create without title", http.MethodPost, "/api/projects", api.CreateProjectRequest{Author: "x"}, http.StatusBadRequest},
		{"import without path", http.MethodPost, "/api/import/novel", api.ImportProjectRequest{}, http.StatusBadRequest},
		{"import docx", http.MethodPost, "/api/import/novel", api.ImportProjectRequest{FilePath: "a.docx"}, http.StatusBadRequest},
		{"import missing file", http.MethodPost, "/api/import/novel", api.ImportProjectRequest{FilePath: "/does/not/exist.txt", Title: "x"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleImportNovel(t *testing.T) {
	s := setupTestServer(t)

	path := filepath.Join(t.TempDir(), "winter-tale.txt")
	require.NoError(t, os.WriteFile(path, []byte("Chapter 1\nOne two three.\nChapter 2\nFour five.\n"), 0600))

	rec := s.do(t, http.MethodPost, "/api/import/novel", api.ImportProjectRequest{
		FilePath:             path,
		Genre:                "fairy tale",
		AutoGenerateMetadata: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env api.ProjectEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Winter Tale", env.Project.Title)
	assert.Equal(t, 2, env.Project.ChapterCount)
	assert.Equal(t, 5, env.Project.WordCount)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.create(t, "Counted")
	s.do(t, http.MethodDelete, "/api/projects/nope", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `hypewriter_devserver_catalog_mutations_total{operation="create",result="success"} 1`)
	assert.Contains(t, body, `hypewriter_devserver_catalog_mutations_total{operation="delete",result="error"} 1`)
	assert.Contains(t, body, "hypewriter_devserver_projects 1")
}

func TestOTelHTTPMetrics(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	srv, err := NewServer(project.NewCatalog(), logging.NewNop(), nil, tt.Telemetry)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	got, ok := tt.CounterValue(t, "hypewriter.devserver.requests_total")
	require.True(t, ok)
	assert.Equal(t, int64(1), got)
}

func TestStartAndShutdown(t *testing.T) {
	srv, err := NewServer(project.NewCatalog(), logging.NewNop(), &Config{Host: "127.0.0.1", Port: freePort(t)}, nil)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.Addr() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	err = <-errCh
	assert.True(t, err == nil || strings.Contains(err.Error(), "Server closed"), "unexpected start error: %v", err)
}

func freePort(t *testing.T) int {
	t.Helper()
	l := httptest.NewServer(http.NotFoundHandler())
	defer l.Close()
	addr := l.Listener.Addr().String()
	var port int
	_, err := fmt.Sscanf(addr[strings.LastIndex(addr, ":")+1:], "%d", &port)
	require.NoError(t, err)
	return port
}
