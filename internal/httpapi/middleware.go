package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// instrument assigns a request id, then logs and counts the request once the
// mux has routed it.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rr := &respRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rr, r)
		elapsed := time.Since(start)

		// The mux records the matched pattern on r.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, r.Method, rr.status, elapsed)
		}

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rr.status,
			"duration", elapsed,
			"request_id", id,
		)
	})
}

type respRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rr *respRecorder) WriteHeader(code int) {
	if !rr.wroteHeader {
		rr.status = code
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *respRecorder) Write(b []byte) (int, error) {
	rr.wroteHeader = true
	return rr.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rr *respRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}
