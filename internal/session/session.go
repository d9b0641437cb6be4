// Package session owns the browser-facing authentication state: an HMAC-JWT
// cookie naming a session id, mirrored durably in Redis so a restart or page
// reload restores the session without a round-trip to the upstream API.
package session

import (
	"errors"

	"github.com/clinicport/clinicport/internal/identity"
)

// ErrStoreUnavailable signals the durable mirror could not be reached. The
// access gate treats this as "still loading" and must not redirect.
var ErrStoreUnavailable = errors.New("session: store unavailable")

// ErrIncomplete rejects an establish call that would break the token/user
// joint-presence invariant.
var ErrIncomplete = errors.New("session: token and user must both be present")

// Session is the client-held auth state. Token and User are jointly present
// or jointly absent; Clinic is set only for clinic-admin sessions. Error
// carries the last login failure back to the form and is never persisted.
type Session struct {
	ID     string           `json:"-"`
	Token  string           `json:"token,omitempty"`
	User   *identity.User   `json:"user,omitempty"`
	Clinic *identity.Clinic `json:"clinic,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Authenticated reports whether the session holds a full credential pair.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Role returns the session's role, or the empty role when unauthenticated.
func (s *Session) Role() identity.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}
