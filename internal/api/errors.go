package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Operation names used in StatusError messages.
const (
	OpLoadProjects    = "load projects"
	OpActivateProject = "activate project"
	OpCreateProject   = "create project"
	OpDeleteProject   = "delete project"
	OpImportProject   = "import project"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op         string
	StatusCode int
	StatusText string
}

// Error returns the user-facing message, e.g.
// "Failed to load projects: Internal Server Error".
func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to %s: %s", e.Op, e.StatusText)
}

func newStatusError(op string, resp *http.Response) *StatusError {
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
	}
}

// statusText extracts the reason phrase from the status line ("404 Not
// Found" -> "Not Found"), falling back to the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
