// Package server exposes the netweave pipeline over HTTP.
//
// The API is JSON in, JSON out. Network documents travel as base64-encoded
// payloads inside the request and response bodies so clients do not have to
// deal with multipart uploads for what are small text documents.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/netweave/netweave/pkg/codec"
	nwerrors "github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/pipeline"
)

// maxBodyBytes caps request body size. Network interchange documents are
// text; anything beyond this is either abuse or the wrong tool.
const maxBodyBytes = 32 << 20

// Server handles HTTP requests against the pipeline.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a server around the given runner. The defaults, typically
// built with config.PipelineOptions, seed every option field a request
// leaves unset. A nil logger falls back to the default logger.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, defaults: defaults, logger: logger}
}

// Handler builds the chi router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})

	return r
}

// =============================================================================
// Request / Response Types
// =============================================================================

// convertRequest asks for a document to be translated between formats.
type convertRequest struct {
	Data []byte `json:"data"`           // Document bytes (base64 in JSON)
	From string `json:"from,omitempty"` // Input format; required, no filename to detect from
	To   string `json:"to"`             // Output format
}

// convertResponse carries the translated document.
type convertResponse struct {
	Data   []byte `json:"data"`
	Format string `json:"format"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

// layoutRequest asks for force-directed positions to be computed.
type layoutRequest struct {
	Data      []byte  `json:"data"`
	Format    string  `json:"format"`
	Steps     int     `json:"steps,omitempty"`
	K         float64 `json:"k,omitempty"`
	Damping   float64 `json:"damping,omitempty"`
	Repulsion float64 `json:"repulsion,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Seed      uint64  `json:"seed,omitempty"`
	ThreeD    bool    `json:"three_d,omitempty"`
}

// layoutResponse carries the document with positions filled in, in the same
// format it arrived in.
type layoutResponse struct {
	Data   []byte        `json:"data"`
	Format string        `json:"format"`
	Nodes  int           `json:"nodes"`
	Edges  int           `json:"edges"`
	Took   time.Duration `json:"took_ns"`
}

// renderRequest asks for rendered artifacts. Options mirrors the pipeline
// options accepted by the CLI render command.
type renderRequest struct {
	Data    []byte           `json:"data"`
	Format  string           `json:"format"`
	Options pipeline.Options `json:"options"`
}

// renderResponse carries rendered artifacts keyed by format.
type renderResponse struct {
	Artifacts map[string][]byte `json:"artifacts"`
	Nodes     int               `json:"nodes"`
	Edges     int               `json:"edges"`
	Cached    bool              `json:"cached"`
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !s.decode(w, r, &req) {
		return
	}

	net, err := codec.Parse(req.Data, req.From)
	if err != nil {
		s.writeError(w, err)
		return
	}

	net.InferModel()
	out, err := codec.Stringify(net, req.To)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Data:   out,
		Format: req.To,
		Nodes:  net.NodeCount(),
		Edges:  net.EdgeCount(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := mergeOptions(s.defaults, pipeline.Options{
		Steps:     req.Steps,
		K:         req.K,
		Damping:   req.Damping,
		Repulsion: req.Repulsion,
		Speed:     req.Speed,
		Seed:      req.Seed,
		ThreeD:    req.ThreeD,
	})
	opts.Data = req.Data
	opts.Format = req.Format
	opts.Logger = s.logger

	start := time.Now()
	net, err := s.runner.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.runner.Layout(r.Context(), net, opts); err != nil {
		s.writeError(w, err)
		return
	}

	net.InferModel()
	out, err := codec.Stringify(net, req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Data:   out,
		Format: req.Format,
		Nodes:  net.NodeCount(),
		Edges:  net.EdgeCount(),
		Took:   time.Since(start),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := mergeOptions(s.defaults, req.Options)
	opts.Data = req.Data
	opts.Format = req.Format
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		Artifacts: result.Artifacts,
		Nodes:     result.Stats.NodeCount,
		Edges:     result.Stats.EdgeCount,
		Cached:    result.CacheInfo.RenderHit,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// mergeOptions overlays request options onto the configured defaults.
// Zero-valued request fields keep the default, so clients only send what
// they want to change.
func mergeOptions(base, req pipeline.Options) pipeline.Options {
	out := base
	if req.Steps > 0 {
		out.Steps = req.Steps
	}
	if req.K > 0 {
		out.K = req.K
	}
	if req.Damping > 0 {
		out.Damping = req.Damping
	}
	if req.Repulsion > 0 {
		out.Repulsion = req.Repulsion
	}
	if req.Speed > 0 {
		out.Speed = req.Speed
	}
	if req.Seed != 0 {
		out.Seed = req.Seed
	}
	if req.ThreeD {
		out.ThreeD = true
	}
	if req.SkipLayout {
		out.SkipLayout = true
	}
	if len(req.Formats) > 0 {
		out.Formats = req.Formats
	}
	if req.Detailed {
		out.Detailed = true
	}
	if req.UsePositions {
		out.UsePositions = true
	}
	if req.Scale > 0 {
		out.Scale = req.Scale
	}
	if req.Refresh {
		out.Refresh = true
	}
	return out
}

// decode reads and unmarshals the request body, writing an error response
// and returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, nwerrors.Wrap(nwerrors.ErrCodeInvalidInput, err, "malformed request body"))
		return false
	}
	return true
}

// writeError maps pipeline error codes to HTTP statuses and writes the
// uniform error payload.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("request failed: %v", err)
	} else {
		s.logger.Debugf("request rejected: %v", err)
	}

	var resp errorResponse
	resp.Error.Code = string(codeForError(err))
	resp.Error.Message = nwerrors.UserMessage(err)
	writeJSON(w, status, resp)
}

func codeForError(err error) nwerrors.Code {
	if code := nwerrors.GetCode(err); code != "" {
		return code
	}
	return nwerrors.ErrCodeInternal
}

func statusForError(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}

	switch codeForError(err) {
	case nwerrors.ErrCodeInvalidInput, nwerrors.ErrCodeInvalidFormat,
		nwerrors.ErrCodeInvalidName, nwerrors.ErrCodeInvalidPath,
		nwerrors.ErrCodeParse:
		return http.StatusBadRequest
	case nwerrors.ErrCodeNotFound, nwerrors.ErrCodeNetworkNotFound,
		nwerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case nwerrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
