// Package httpapi serves the lint engine over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

// DefaultMaxBodyBytes caps request bodies when Deps.MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 1 << 20

const defaultFilename = "component.tsx"

// Deps wires the handler. Linter is required; nil observability fields
// disable the corresponding signal.
type Deps struct {
	Linter       *lint.Linter
	Logger       *slog.Logger
	Tracer       trace.Tracer
	RED          *observability.REDMetrics
	LintMetrics  *observability.LintMetrics
	Metrics      http.Handler
	MaxBodyBytes int64
}

// LintRequest is the body of POST /v1/lint.
type LintRequest struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Fix      bool   `json:"fix"`
}

// LintResponse is the reply to POST /v1/lint.
type LintResponse struct {
	Filename     string             `json:"filename"`
	Language     string             `json:"language"`
	Diagnostics  []rules.Diagnostic `json:"diagnostics"`
	FixesApplied int                `json:"fixesApplied"`
	Output       string             `json:"output,omitempty"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

type api struct {
	deps Deps
}

// NewHandler returns the API routes wrapped in tracing and RED metrics.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	if deps.Tracer == nil {
		deps.Tracer = nooptrace.NewTracerProvider().Tracer("httpapi")
	}

	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}

	a := &api{deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/lint", a.handleLint)
	mux.HandleFunc("GET /v1/rules", a.handleRules)
	mux.Handle("GET /healthz", observability.HealthHandler())

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	return observability.HTTPMiddleware(deps.Tracer, deps.RED, mux)
}

func (a *api) handleLint(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	start := time.Now()

	var body LintRequest

	decoder := json.NewDecoder(http.MaxBytesReader(rw, req.Body, a.deps.MaxBodyBytes))
	decoder.DisallowUnknownFields()

	err := decoder.Decode(&body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeError(rw, req, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))

			return
		}

		a.writeError(rw, req, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))

		return
	}

	if body.Code == "" {
		a.writeError(rw, req, http.StatusBadRequest, errors.New("code is required"))

		return
	}

	if body.Filename == "" {
		body.Filename = defaultFilename
	}

	res, err := a.deps.Linter.LintSource(ctx, body.Filename, []byte(body.Code), body.Fix)
	if errors.Is(err, uast.ErrUnsupportedLanguage) {
		a.writeError(rw, req, http.StatusUnprocessableEntity, err)

		return
	}

	if err != nil {
		a.writeError(rw, req, http.StatusInternalServerError, err)

		return
	}

	a.deps.LintMetrics.RecordFile(ctx, observability.FileStats{
		Language:          res.Language,
		DiagnosticsByRule: res.CountByRule(),
		FixesApplied:      res.FixesApplied,
		Duration:          time.Since(start),
	})

	resp := LintResponse{
		Filename:     body.Filename,
		Language:     res.Language,
		Diagnostics:  res.Diagnostics,
		FixesApplied: res.FixesApplied,
	}

	if resp.Diagnostics == nil {
		resp.Diagnostics = []rules.Diagnostic{}
	}

	if res.Fixed() {
		resp.Output = string(res.Output)
	}

	a.writeJSON(rw, req, http.StatusOK, resp)
}

func (a *api) handleRules(rw http.ResponseWriter, req *http.Request) {
	enabled := a.deps.Linter.Engine().Rules()
	metas := make([]rules.Meta, 0, len(enabled))

	for _, rule := range enabled {
		metas = append(metas, rule.Meta())
	}

	a.writeJSON(rw, req, http.StatusOK, metas)
}

func (a *api) writeError(rw http.ResponseWriter, req *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		a.deps.Logger.ErrorContext(req.Context(), "request failed", slog.String("path", req.URL.Path), slog.Any("error", err))
	}

	a.writeJSON(rw, req, status, ErrorResponse{Error: err.Error()})
}

func (a *api) writeJSON(rw http.ResponseWriter, req *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	err := json.NewEncoder(rw).Encode(value)
	if err != nil {
		a.deps.Logger.ErrorContext(req.Context(), "failed to encode JSON response", slog.Any("error", err))
	}
}
