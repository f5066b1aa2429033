// Package httpapi is the HTTP transport shell over the recstore service.
//
// Routes:
//
//	POST /movie       store a record from a JSON body
//	GET  /movie/{id}  fetch a record as indented JSON
//	GET  /health      liveness
//	GET  /metrics     Prometheus exposition, when metrics are configured
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/roach88/recstore/internal/metrics"
	"github.com/roach88/recstore/internal/record"
	"github.com/roach88/recstore/internal/service"
)

// MaxBodyBytes bounds a POST /movie body.
const MaxBodyBytes = 1 << 20

// Server maps HTTP requests onto a service.Service.
type Server struct {
	svc     *service.Service
	schema  *record.Schema
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Options holds the optional collaborators of a Server.
type Options struct {
	// Metrics enables request instrumentation and the /metrics route.
	Metrics *metrics.Metrics

	// Logger receives one line per request. Nil discards.
	Logger *slog.Logger
}

// New creates a Server.
func New(svc *service.Service, schema *record.Schema, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{svc: svc, schema: schema, metrics: opts.Metrics, logger: logger}
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /movie", s.handlePut)
	mux.HandleFunc("GET /movie/{id}", s.handleGet)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s.instrument(mux)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r.Header.Get("Content-Type")) {
		http.Error(w, "expected Content-Type: application/json", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	rec, err := s.schema.Decode(body)
	if err != nil {
		var ve *record.ValidationError
		if errors.As(err, &ve) && !ve.Syntax {
			http.Error(w, ve.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.svc.Put(r.Context(), rec); err != nil {
		if record.IsDuplicateID(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.internalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := s.svc.Get(r.Context(), id)
	if err != nil {
		if record.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.internalError(w, r, err)
		return
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestID(r.Context()),
		"error", err,
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// isJSON accepts application/json and any +json media type.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
