package access

import (
	"errors"
	"net/http"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/observability/metrics"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/pkg/logging"
)

// Gate returns middleware guarding a route group for the given roles. The
// hydrated session is attached to the request context for handlers.
func Gate(store *session.Store, cookies *session.Cookies, m *metrics.GateMetrics, logger *logging.Logger, allowed ...identity.Role) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, _ := cookies.ReadSID(r)

			sess, err := store.Hydrate(r.Context(), sid)
			loading := errors.Is(err, session.ErrStoreUnavailable)
			if err != nil && !loading {
				logger.Error("session hydration failed", "error", err)
				loading = true
			}

			decision := Decide(sess, loading, r.URL.RequestURI(), allowed...)
			m.ObserveDecision(string(decision.Outcome))

			switch decision.Outcome {
			case OutcomeLoading:
				// Do not bounce to login just because the mirror blipped.
				w.Header().Set("Retry-After", "2")
				http.Error(w, `{"error":"session unavailable, retry shortly"}`, http.StatusServiceUnavailable)
			case OutcomeRedirectLogin, OutcomeRedirectDashboard:
				// Authorization failures resolve silently, never as errors.
				http.Redirect(w, r, decision.Location, http.StatusFound)
			case OutcomeAllow:
				ctx := session.WithSession(r.Context(), sess)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			}
		})
	}
}
