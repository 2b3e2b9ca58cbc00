package devserver

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/project"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Projects int    `json:"projects"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Projects: s.catalog.Len()})
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.catalog.List(c.Request().Context())
	if err != nil {
		return s.httpError(c, err)
	}

	out := make([]api.ProjectMetadata, 0, len(projects))
	for _, p := range projects {
		out = append(out, toMetadata(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req api.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := s.catalog.Create(c.Request().Context(), project.CreateParams{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Description: req.Description,
	})
	s.observe("create", err)
	if err != nil {
		return s.httpError(c, err)
	}

	ctx := logging.WithProjectID(c.Request().Context(), p.ID)
	s.logger.Info(ctx, "project created", zap.String("title", p.Title))
	return c.JSON(http.StatusOK, toMetadata(p))
}

func (s *Server) handleActivateProject(c echo.Context) error {
	id := c.Param("id")
	ctx := logging.WithProjectID(c.Request().Context(), id)

	p, err := s.catalog.Touch(ctx, id)
	s.observe("activate", err)
	if err != nil {
		return s.httpError(c, err)
	}

	s.logger.Debug(ctx, "project activated")
	return c.JSON(http.StatusOK, api.ProjectEnvelope{Project: toMetadata(p)})
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	id := c.Param("id")
	ctx := logging.WithProjectID(c.Request().Context(), id)

	err := s.catalog.Delete(ctx, id)
	s.observe("delete", err)
	if err != nil {
		return s.httpError(c, err)
	}

	s.logger.Info(ctx, "project deleted")
	return c.JSON(http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}

func (s *Server) handleImportNovel(c echo.Context) error {
	var req api.ImportProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := s.catalog.Import(c.Request().Context(), project.ImportParams{
		FilePath:             req.FilePath,
		Title:                req.Title,
		Author:               req.Author,
		Genre:                req.Genre,
		AutoGenerateMetadata: req.AutoGenerateMetadata,
	})
	s.observe("import", err)
	if err != nil {
		return s.httpError(c, err)
	}

	ctx := logging.WithProjectID(c.Request().Context(), p.ID)
	s.logger.Info(ctx, "novel imported",
		zap.String("title", p.Title),
		zap.Int("chapters", p.ChapterCount),
		zap.Int("words", p.WordCount),
	)
	return c.JSON(http.StatusOK, api.ProjectEnvelope{Project: toMetadata(p)})
}

func (s *Server) observe(operation string, err error) {
	s.metrics.observe(operation, err)
	s.metrics.Projects.Set(float64(s.catalog.Len()))
}

// httpError maps catalog errors onto HTTP statuses. echo writes the standard
// reason phrase on the status line, which is what clients surface.
func (s *Server) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, os.ErrNotExist):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, project.ErrEmptyTitle),
		errors.Is(err, project.ErrEmptyProjectID),
		errors.Is(err, project.ErrEmptyFilePath),
		errors.Is(err, project.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(c.Request().Context(), "request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func toMetadata(p *project.Project) api.ProjectMetadata {
	return api.ProjectMetadata{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		Genre:        p.Genre,
		Description:  p.Description,
		WordCount:    p.WordCount,
		ChapterCount: p.ChapterCount,
		CreatedDate:  p.CreatedAt.Format(time.RFC3339Nano),
		LastModified: p.LastModified.Format(time.RFC3339Nano),
	}
}
