package middleware

import (
	"net/http"

	"github.com/clinicport/clinicport/pkg/logging"
)

// Boundary is the per-role-area error boundary: a panic anywhere inside a
// mounted role group becomes a logged JSON 500 instead of tearing down the
// connection. One boundary wraps each role area.
func Boundary(area string, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	scoped := logger.WithArea(area)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					scoped.Error("panic in role area",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
