package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"portfolio-api/internal/handlers"
)

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", time.Since(start),
				"ip", clientIP(r),
			)
		})
	}
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecoveryMiddleware turns a panic into a 500.
func RecoveryMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic serving request", "path", r.URL.Path, "panic", err)
					respondError(w, http.StatusInternalServerError, "Internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware sets the cross-origin headers on every response and answers
// OPTIONS for any path before it reaches the router.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range handlers.CORSHeaders() {
			w.Header().Set(k, v)
		}

		if r.Method == http.MethodOptions {
			writeResponse(w, handlers.Preflight())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	for k, val := range handlers.CORSHeaders() {
		w.Header().Set(k, val)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
