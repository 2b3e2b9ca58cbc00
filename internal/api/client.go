package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hypewriter/internal/logging"
	"github.com/fyrsmithlabs/hypewriter/internal/telemetry"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 30 * time.Second

// Client talks to the project backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	tel        *telemetry.Telemetry
	tracer     trace.Tracer
	metrics    *clientMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTelemetry traces and meters every request.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(c *Client) { c.tel = t }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	c.logger = c.logger.Named("api")
	c.tracer = c.tel.Tracer(instrumentationName)
	c.metrics = newClientMetrics(c.tel.Meter(instrumentationName), c.logger)
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProjects fetches every project.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectMetadata, error) {
	var projects []ProjectMetadata
	if err := c.do(ctx, OpLoadProjects, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []ProjectMetadata{}
	}
	return projects, nil
}

// ActivateProject marks a project as active and returns its current record.
func (c *Client) ActivateProject(ctx context.Context, id string) (ProjectMetadata, error) {
	var env ProjectEnvelope
	path := "/api/projects/" + url.PathEscape(id) + "/activate"
	if err := c.do(logging.WithProjectID(ctx, id), OpActivateProject, http.MethodPost, path, nil, &env); err != nil {
		return ProjectMetadata{}, err
	}
	return env.Project, nil
}

// CreateProject creates a project from the given metadata.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (ProjectMetadata, error) {
	var project ProjectMetadata
	if err := c.do(ctx, OpCreateProject, http.MethodPost, "/api/projects", req, &project); err != nil {
		return ProjectMetadata{}, err
	}
	return project, nil
}

// DeleteProject removes a project. The response body is ignored.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	path := "/api/projects/" + url.PathEscape(id)
	return c.do(logging.WithProjectID(ctx, id), OpDeleteProject, http.MethodDelete, path, nil, nil)
}

// ImportNovel imports a manuscript as a new project.
func (c *Client) ImportNovel(ctx context.Context, req ImportProjectRequest) (ProjectMetadata, error) {
	var env ProjectEnvelope
	if err := c.do(ctx, OpImportProject, http.MethodPost, "/api/import/novel", req, &env); err != nil {
		return ProjectMetadata{}, err
	}
	return env.Project, nil
}

// do performs one JSON request. body and out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	status := 0

	ctx, span := c.tracer.Start(ctx, "api."+spanName(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer func() {
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.record(ctx, op, status, start, err)
	}()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.Debug(ctx, "api request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return newStatusError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// spanName turns "load projects" into "LoadProjects".
func spanName(op string) string {
	parts := strings.Fields(op)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
