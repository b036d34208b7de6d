package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/itchan-dev/nanashi/shared/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an id and puts a logger carrying it into
// the request context. An incoming id is kept when it parses as a uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		l := logger.Log.With("request_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
	})
}
