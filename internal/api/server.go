// Package api serves the landmark and transform endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/config"
	"github.com/neuronav-data/stereotax/internal/convention"
	"github.com/neuronav-data/stereotax/internal/db"
	"github.com/neuronav-data/stereotax/internal/monitoring"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server holds the API dependencies and request defaults.
type Server struct {
	db                *db.DB
	defaultCenter     acpc.CenterMode
	defaultConvention convention.Convention
	tolerance         float64
}

// NewServer builds a Server over the database using the configured
// defaults.
func NewServer(database *db.DB, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &Server{
		db:                database,
		defaultCenter:     cfg.GetCenterMode(),
		defaultConvention: cfg.GetOutputConvention(),
		tolerance:         cfg.GetDegeneracyTolerance(),
	}
}

// ServeMux mounts all API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/landmarks", s.listLandmarkSets)
	mux.HandleFunc("POST /api/landmarks", s.createLandmarkSet)
	mux.HandleFunc("GET /api/landmarks/{id}", s.getLandmarkSet)
	mux.HandleFunc("DELETE /api/landmarks/{id}", s.deleteLandmarkSet)
	mux.HandleFunc("POST /api/landmarks/{id}/transform", s.computeTransform)
	mux.HandleFunc("GET /api/landmarks/{id}/transforms", s.listTransforms)
	mux.HandleFunc("GET /api/transforms/{id}", s.getTransform)
	mux.HandleFunc("GET /api/version", s.getVersion)
	mux.HandleFunc("GET /debug/landmarks/{id}/plot", s.plotLandmarkSet)
	mux.HandleFunc("GET /debug/landmarks/{id}/scene", s.sceneLandmarkSet)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeWorkError maps domain errors to status codes: degenerate landmarks
// are a semantic problem with an otherwise well-formed request, bad enum
// values are the caller's fault, unknown ids are 404.
func writeWorkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, acpc.ErrDegenerateInput):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, acpc.ErrInvalidCenterMode), errors.Is(err, acpc.ErrMissingInput):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
