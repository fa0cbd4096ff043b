// Package api provides the HTTP REST API server for svgpie.
//
// It exposes endpoints for rendering pie charts from inline observations
// and for health checks. Rendered artifacts can be returned either inside
// a JSON envelope (base64-encoded) or as raw bytes with the matching
// content type.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pgrunwald/svgpie/pkg/buildinfo"
	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/errors"
	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a configured API server with all routes and middleware.
// The runner must not be nil; a nil logger falls back to log.Default().
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	srv := &Server{
		runner: runner,
		logger: logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/healthz", s.handleHealth)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/charts", s.handleCharts)
		r.Post("/charts/{format}", s.handleChartArtifact)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ChartRequest is the body for POST /v1/charts. It embeds the pipeline
// options; only inline observations are accepted over HTTP, file and
// MongoDB sources are reserved for the CLI.
type ChartRequest struct {
	pipeline.Options
}

// ChartResponse is the payload for a successful chart render.
type ChartResponse struct {
	DatasetHash string             `json:"dataset_hash"`
	Shares      []pie.Share        `json:"shares"`
	Artifacts   map[string][]byte  `json:"artifacts"` // base64-encoded by encoding/json
	Stats       ChartStats         `json:"stats"`
	CacheInfo   pipeline.CacheInfo `json:"cache_info"`
}

// ChartStats mirrors pipeline.Stats with JSON-friendly durations.
type ChartStats struct {
	SliceCount int    `json:"slice_count"`
	LoadTime   string `json:"load_time"`
	LayoutTime string `json:"layout_time"`
	RenderTime string `json:"render_time"`
}

// contentTypes maps output formats to HTTP content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": buildinfo.Version,
		},
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ChartResponse{
			DatasetHash: result.DatasetHash,
			Shares:      result.Shares,
			Artifacts:   result.Artifacts,
			Stats: ChartStats{
				SliceCount: result.Stats.SliceCount,
				LoadTime:   result.Stats.LoadTime.String(),
				LayoutTime: result.Stats.LayoutTime.String(),
				RenderTime: result.Stats.RenderTime.String(),
			},
			CacheInfo: result.CacheInfo,
		},
	})
}

// handleChartArtifact renders a single format and returns the raw bytes.
func (s *Server) handleChartArtifact(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format]) //nolint:errcheck
}

// decodeOptions parses the request body and rejects non-inline sources.
func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	var req ChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return pipeline.Options{}, false
	}
	if len(req.Observations) == 0 {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "observations are required"))
		return pipeline.Options{}, false
	}
	if req.Input != "" || req.MongoURI != "" {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "file and mongo sources are not allowed over HTTP"))
		return pipeline.Options{}, false
	}
	req.Options.Logger = s.logger
	return req.Options, true
}

// ============================================================
// Helpers
// ============================================================

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidColumn, errors.ErrCodeInvalidPalette,
		errors.ErrCodeInvalidFormat, errors.ErrCodeDegenerateTotal,
		errors.ErrCodeNegativeValue, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   errors.UserMessage(err),
		Code:    string(errors.GetCode(err)),
	})
}
