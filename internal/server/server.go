// Package server exposes the analysis pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and build version
//	POST /v1/analyze    run an analysis over {"files": [{"path", "content"}]}
//	POST /v1/graph      same input, returns the risk graph as Graphviz DOT
//
// Request bodies are capped at [MaxBodySize] and at most [MaxFiles]
// manifests are accepted per request.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/riskgraph/pkg/buildinfo"
	"github.com/matzehuels/riskgraph/pkg/deps"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/pipeline"
	"github.com/matzehuels/riskgraph/pkg/render/nodelink"
)

const (
	MaxBodySize     = 20 << 20
	MaxFiles        = 500
	RequestTimeout  = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Analyzer runs one analysis. [pipeline.Runner] implements it.
type Analyzer interface {
	Analyze(ctx context.Context, files []deps.ManifestFile, progress pipeline.Progress) (*pipeline.Result, error)
}

// AnalyzeRequest is the body of both analysis routes.
type AnalyzeRequest struct {
	Files []deps.ManifestFile `json:"files"`
}

// ErrorResponse is written for every non-2xx response.
type ErrorResponse struct {
	Code    rgerrors.Code `json:"code"`
	Message string        `json:"message"`
}

// Server routes HTTP requests to an Analyzer.
type Server struct {
	analyzer Analyzer
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. A nil logger selects log.Default().
func New(a Analyzer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{analyzer: a, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/graph", s.handleGraph)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyze(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(nodelink.ToDOT(res.Dependencies, nodelink.Options{Detailed: true})))
}

// analyze decodes, validates and runs a request. On failure it writes the
// error response and reports false.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	res, err := s.analyzer.Analyze(r.Context(), req.Files, nil)
	if err != nil {
		if r.Context().Err() != nil {
			err = rgerrors.Wrap(rgerrors.ErrCodeTimeout, err, "analysis did not finish")
		}
		writeError(w, err)
		return nil, false
	}
	return res, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req AnalyzeRequest
	if err := dec.Decode(&req); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	switch {
	case len(req.Files) == 0:
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "no files submitted")
	case len(req.Files) > MaxFiles:
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "too many files (max %d)", MaxFiles)
	}
	for _, f := range req.Files {
		if err := rgerrors.ValidatePath(f.Path); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := rgerrors.GetCode(err)
	if code == "" {
		code = rgerrors.ErrCodeInternal
	}
	writeJSON(w, statusForCode(code), ErrorResponse{Code: code, Message: rgerrors.UserMessage(err)})
}

func statusForCode(code rgerrors.Code) int {
	switch code {
	case rgerrors.ErrCodeInvalidInput, rgerrors.ErrCodeInvalidPath, rgerrors.ErrCodeInvalidManifest,
		rgerrors.ErrCodeInvalidPackage, rgerrors.ErrCodeInvalidEcosystem:
		return http.StatusBadRequest
	case rgerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// logRequests logs one line per request at info level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
