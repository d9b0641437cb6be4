package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicport/clinicport/internal/auth"
	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// AuthHandler exposes the four login flows, patient signup, logout and the
// session hydration endpoint.
type AuthHandler struct {
	svc     *auth.Service
	store   *session.Store
	cookies *session.Cookies
	logger  *logging.Logger
}

// NewAuthHandler creates the auth HTTP surface.
func NewAuthHandler(svc *auth.Service, store *session.Store, cookies *session.Cookies, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{svc: svc, store: store, cookies: cookies, logger: logger}
}

type loginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	RememberEmail bool   `json:"remember_email,omitempty"`
	Next          string `json:"next,omitempty"`
}

type loginResponse struct {
	User     *identity.User   `json:"user"`
	Clinic   *identity.Clinic `json:"clinic,omitempty"`
	Redirect string           `json:"redirect"`
}

// SuperAdminLogin handles POST /super-admin/login.
func (h *AuthHandler) SuperAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, identity.RoleSuperAdmin)
}

// AdminLogin handles POST /admin/login (the one canonical clinic-admin path).
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, identity.RoleAdmin)
}

// DoctorLogin handles POST /doctor/login.
func (h *AuthHandler) DoctorLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, identity.RoleDoctor)
}

// PatientLogin handles POST /login.
func (h *AuthHandler) PatientLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, identity.RoleUser)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role identity.Role) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Reuse the browser's session id when a valid cookie exists, so a
	// re-login lands in the same durable slot.
	sid, ok := h.cookies.ReadSID(r)
	if !ok {
		sid = session.NewSID()
	}

	sess, err := h.svc.Login(r.Context(), sid, role, identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	}, req.RememberEmail)
	if err != nil {
		h.writeLoginFailure(w, err)
		return
	}

	cookie, err := h.cookies.Issue(sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, loginResponse{
		User:     sess.User,
		Clinic:   sess.Clinic,
		Redirect: safeNext(req.Next, role),
	})
}

// writeLoginFailure maps login errors to the inline-form contract: wrong
// credentials surface the upstream's message, infrastructure trouble stays
// generic.
func (h *AuthHandler) writeLoginFailure(w http.ResponseWriter, err error) {
	var apiErr *upstream.APIError
	switch {
	case errors.As(err, &apiErr) && upstream.IsAuthFailure(err):
		writeError(w, http.StatusUnauthorized, apiErr.Message)
	case errors.Is(err, auth.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "unknown role")
	default:
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusBadGateway, "login is temporarily unavailable")
	}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Next            string `json:"next,omitempty"`
}

type signupResponse struct {
	AccountCreated bool           `json:"account_created"`
	User           *identity.User `json:"user,omitempty"`
	Redirect       string         `json:"redirect"`
}

// Signup handles POST /signup: validate locally, register, auto-login. When
// the account is created but auto-login fails, the response still reports
// success and routes back to the login form with the origin preserved.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sid, ok := h.cookies.ReadSID(r)
	if !ok {
		sid = session.NewSID()
	}

	out, err := h.svc.Signup(r.Context(), sid, identity.SignupRequest{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			writeError(w, http.StatusUnprocessableEntity, "Passwords do not match")
			return
		}
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			writeError(w, apiErr.Status, apiErr.Message)
			return
		}
		h.logger.Error("signup failed", "error", err)
		writeError(w, http.StatusBadGateway, "signup is temporarily unavailable")
		return
	}

	if out.Session == nil {
		// Account exists; session does not. Send the patient to the login
		// form with their origin preserved.
		redirect := identity.RoleUser.LoginPath()
		if req.Next != "" {
			redirect += "?next=" + req.Next
		}
		writeJSON(w, http.StatusOK, signupResponse{
			AccountCreated: true,
			Redirect:       redirect,
		})
		return
	}

	cookie, err := h.cookies.Issue(sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, signupResponse{
		AccountCreated: true,
		User:           out.Session.User,
		Redirect:       safeNext(req.Next, identity.RoleUser),
	})
}

// Logout handles POST /logout: clears every durable key and the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, ok := h.cookies.ReadSID(r); ok {
		if err := h.svc.Logout(r.Context(), sid); err != nil {
			h.logger.Error("logout failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "logout could not be completed, retry")
			return
		}
	}
	http.SetCookie(w, h.cookies.Expire())
	writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// Session handles GET /session: the hydration endpoint a browser calls at
// startup to restore its state without a login round-trip.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.cookies.ReadSID(r)
	if !ok {
		writeJSON(w, http.StatusOK, &session.Session{})
		return
	}
	sess, err := h.store.Hydrate(r.Context(), sid)
	if err != nil {
		w.Header().Set("Retry-After", "2")
		writeError(w, http.StatusServiceUnavailable, "session unavailable, retry shortly")
		return
	}
	if email := h.store.RememberedEmail(r.Context(), sid); email != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"token":  sess.Token,
			"user":   sess.User,
			"clinic": sess.Clinic,
			"email":  email,
		})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
