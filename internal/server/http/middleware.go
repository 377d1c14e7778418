package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/arsp/ranking-service/internal/observability"
)

// requestContextMiddleware propagates the chi request ID into the context
// used by the observability helpers and echoes it in the response header.
func requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}

		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
			r = r.WithContext(observability.WithRequestID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}

// jsonContentTypeMiddleware sets Content-Type: application/json for all
// API responses.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
