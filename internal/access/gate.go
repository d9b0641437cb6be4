// Package access enforces authentication and role authorization in front of
// every protected route. The decision itself is a pure function of the
// hydrated session and the attempted path, so it can run on every request
// without side effects.
package access

import (
	"net/url"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/session"
)

// Outcome is the gate's effective state for one request.
type Outcome string

const (
	// OutcomeAllow renders the protected resource.
	OutcomeAllow Outcome = "allow"
	// OutcomeLoading means the session could not be decided yet; the caller
	// must hold (spinner / retry), never redirect.
	OutcomeLoading Outcome = "loading"
	// OutcomeRedirectLogin bounces an unauthenticated visitor to the login
	// route matching the attempted path prefix.
	OutcomeRedirectLogin Outcome = "redirect_login"
	// OutcomeRedirectDashboard bounces an authenticated session with the
	// wrong role to its own dashboard.
	OutcomeRedirectDashboard Outcome = "redirect_dashboard"
)

// Decision is a gate outcome plus the redirect target when applicable.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide evaluates the gate rules in order: loading, unauthenticated, role
// mismatch, allow. requestURI is the attempted location carried through the
// login redirect so the flow can return the visitor afterward.
func Decide(sess *session.Session, loading bool, requestURI string, allowed ...identity.Role) Decision {
	if loading {
		return Decision{Outcome: OutcomeLoading}
	}

	if !sess.Authenticated() {
		login := identity.LoginPathForRequest(requestURI)
		return Decision{
			Outcome:  OutcomeRedirectLogin,
			Location: login + "?next=" + url.QueryEscape(requestURI),
		}
	}

	role := sess.Role()
	for _, a := range allowed {
		if role == a {
			return Decision{Outcome: OutcomeAllow}
		}
	}
	return Decision{
		Outcome:  OutcomeRedirectDashboard,
		Location: role.DashboardPath(),
	}
}
