package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/devserver"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
)

// setupBackend isolates HOME and starts a development backend.
func setupBackend(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	srv, err := devserver.NewServer(project.NewCatalog(), logging.NewNop(), nil, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func projectIDs(t *testing.T, url string) map[string]string {
	t.Helper()
	projects, err := api.NewClient(url).ListProjects(context.Background())
	require.NoError(t, err)
	ids := make(map[string]string, len(projects))
	for _, p := range projects {
		ids[p.Title] = p.ID
	}
	return ids
}

func TestProjects_CreateListCurrent(t *testing.T) {
	url := setupBackend(t)

	out, err := execute(t, "--server", url, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")

	out, err = execute(t, "--server", url, "projects", "create", "--title", "Dune", "--author", "Frank")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Created "Dune"`)
	assert.Contains(t, out, "author:   Frank")

	out, err = execute(t, "--server", url, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "*")

	out, err = execute(t, "--server", url, "projects", "current")
	require.NoError(t, err)
	assert.Contains(t, out, `Current "Dune"`)
}

func TestProjects_CreateFromTOML(t *testing.T) {
	url := setupBackend(t)

	meta := filepath.Join(t.TempDir(), "meta.toml")
	require.NoError(t, os.WriteFile(meta, []byte(`title = "The Long Road"
author = "Ann Lee"
genre = "Fantasy"
description = "A journey"
`), 0600))

	out, err := execute(t, "--server", url, "projects", "create", "--from", meta, "--genre", "Mystery")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Created "The Long Road"`)
	assert.Contains(t, out, "author:   Ann Lee")
	assert.Contains(t, out, "genre:    Mystery")

	_, err = execute(t, "--server", url, "projects", "create", "--from", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestProjects_UseIsRemembered(t *testing.T) {
	url := setupBackend(t)

	_, err := execute(t, "--server", url, "projects", "create", "--title", "First")
	require.NoError(t, err)
	_, err = execute(t, "--server", url, "projects", "create", "--title", "Second")
	require.NoError(t, err)
	ids := projectIDs(t, url)

	out, err := execute(t, "--server", url, "projects", "use", ids["First"])
	require.NoError(t, err)
	assert.Contains(t, out, `Switched to "First"`)

	out, err = execute(t, "--server", url, "projects", "current")
	require.NoError(t, err)
	assert.Contains(t, out, `Current "First"`)

	_, err = execute(t, "--server", url, "projects", "use", "missing")
	require.Error(t, err)
	assert.Equal(t, "Failed to activate project: Not Found", err.Error())
}

func TestProjects_DeleteActiveFallsBack(t *testing.T) {
	url := setupBackend(t)

	_, err := execute(t, "--server", url, "projects", "create", "--title", "Keep")
	require.NoError(t, err)
	_, err = execute(t, "--server", url, "projects", "create", "--title", "Drop")
	require.NoError(t, err)
	ids := projectIDs(t, url)

	out, err := execute(t, "--server", url, "projects", "delete", ids["Drop"])
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted "+ids["Drop"])
	assert.Contains(t, out, `Active project is now "Keep"`)

	_, ok := projectIDs(t, url)["Drop"]
	assert.False(t, ok)
}

func TestProjects_Import(t *testing.T) {
	url := setupBackend(t)

	manuscript := filepath.Join(t.TempDir(), "the-long-road.md")
	require.NoError(t, os.WriteFile(manuscript, []byte("by Ann Lee\n\nChapter 1\nIt began.\n\nChapter 2\nIt ended.\n"), 0600))

	out, err := execute(t, "--server", url, "projects", "import", manuscript)
	require.NoError(t, err, out)
	assert.Contains(t, out, `Imported "The Long Road"`)
	assert.Contains(t, out, "author:   Ann Lee")
	assert.Contains(t, out, "chapters: 2")

	_, err = execute(t, "--server", url, "projects", "import", filepath.Join(t.TempDir(), "novel.pdf"))
	require.Error(t, err)
	assert.Equal(t, "Failed to import project: Bad Request", err.Error())
}

func TestProjects_BackendFailure(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	_, err := execute(t, "--server", ts.URL, "projects", "list")
	require.Error(t, err)
	assert.Equal(t, "Failed to load projects: Internal Server Error", err.Error())
}

func TestInvalidServerFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "--server", "ftp://example.com", "projects", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --server")
}

func TestTheme(t *testing.T) {
	url := setupBackend(t)

	out, err := execute(t, "--server", url, "theme", "set", "on")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = execute(t, "--server", url, "theme", "show")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = execute(t, "--server", url, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = execute(t, "--server", url, "theme", "show")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	_, err = execute(t, "--server", url, "theme", "set", "purple")
	require.Error(t, err)
}
