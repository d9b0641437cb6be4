// Package auth runs the role login flows against the upstream API and
// establishes gateway sessions from their results.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/observability/metrics"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

var (
	// ErrPasswordMismatch rejects a signup before any network call is made.
	ErrPasswordMismatch = errors.New("auth: passwords do not match")
	// ErrUnknownRole rejects a login attempt for a role outside the closed set.
	ErrUnknownRole = errors.New("auth: unknown role")
	// ErrMalformedLogin signals the upstream returned success without the
	// token/user pair a session needs.
	ErrMalformedLogin = errors.New("auth: upstream login response missing token or user")
)

// API is the slice of the upstream client the login flows use.
type API interface {
	Login(ctx context.Context, role identity.Role, creds identity.Credentials) (*upstream.LoginResponse, error)
	Signup(ctx context.Context, req identity.SignupRequest) (*upstream.SignupResponse, error)
}

// Service orchestrates login, signup and logout for all four roles.
type Service struct {
	api      API
	sessions *session.Store
	metrics  *metrics.AuthMetrics
	logger   *logging.Logger
}

// NewService creates the auth service.
func NewService(api API, sessions *session.Store, m *metrics.AuthMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{api: api, sessions: sessions, metrics: m, logger: logger}
}

// Login posts credentials to the role's upstream endpoint and, on success,
// atomically establishes the session. A rejected login leaves any prior
// durable session untouched; the returned error carries the upstream's
// human-readable message for the form.
func (s *Service) Login(ctx context.Context, sid string, role identity.Role, creds identity.Credentials, rememberEmail bool) (*session.Session, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}

	resp, err := s.api.Login(ctx, role, creds)
	if err != nil {
		s.metrics.ObserveLogin(string(role), "failure")
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		s.metrics.ObserveLogin(string(role), "failure")
		return nil, ErrMalformedLogin
	}

	if err := s.sessions.Establish(ctx, sid, resp.Token, resp.User, resp.Clinic); err != nil {
		s.metrics.ObserveLogin(string(role), "failure")
		return nil, fmt.Errorf("auth: persist session: %w", err)
	}
	if rememberEmail {
		if err := s.sessions.RememberEmail(ctx, sid, creds.Email); err != nil {
			// Convenience field only; the login itself already succeeded.
			s.logger.Warn("failed to remember email", "error", err)
		}
	}

	s.metrics.ObserveLogin(string(role), "success")
	s.logger.Info("login succeeded", "role", string(role), "user_id", resp.User.ID)
	return &session.Session{ID: sid, Token: resp.Token, User: resp.User, Clinic: resp.Clinic}, nil
}

// SignupOutcome reports the split result of the patient signup chain. The
// account can exist even when the follow-up login did not stick.
type SignupOutcome struct {
	AccountCreated bool
	Session        *session.Session
	LoginErr       error
}

// Signup validates locally, registers the patient upstream, then chains an
// auto-login. Password mismatch returns before any network call. If signup
// succeeds but auto-login fails, the outcome says so explicitly so the
// surface never implies the account was not created.
func (s *Service) Signup(ctx context.Context, sid string, req identity.SignupRequest) (SignupOutcome, error) {
	if req.Password != req.ConfirmPassword {
		return SignupOutcome{}, ErrPasswordMismatch
	}

	if _, err := s.api.Signup(ctx, req); err != nil {
		return SignupOutcome{}, err
	}

	sess, err := s.Login(ctx, sid, identity.RoleUser, identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	}, false)
	if err != nil {
		s.logger.Warn("auto-login after signup failed", "email", req.Email, "error", err)
		return SignupOutcome{AccountCreated: true, LoginErr: err}, nil
	}
	return SignupOutcome{AccountCreated: true, Session: sess}, nil
}

// Logout clears every durable session key and reports success even for an
// already-empty session; logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		return err
	}
	s.metrics.ObserveLogout()
	return nil
}
