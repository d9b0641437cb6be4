package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/plan"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// SuperAdminAPI is the slice of the upstream client the super-admin area uses.
type SuperAdminAPI interface {
	Clinics(ctx context.Context, token string, page int) (upstream.Page[identity.Clinic], error)
	CreateClinic(ctx context.Context, token string, clinic identity.Clinic) (*identity.Clinic, error)
	Plans(ctx context.Context, token string, page int) (upstream.Page[plan.Plan], error)
	UpdatePlan(ctx context.Context, token, planID string, p plan.Plan) (*plan.Plan, error)
}

// SuperAdminHandler proxies the platform-wide clinic and plan management
// surface.
type SuperAdminHandler struct {
	api    SuperAdminAPI
	logger *logging.Logger
}

func NewSuperAdminHandler(api SuperAdminAPI, logger *logging.Logger) *SuperAdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SuperAdminHandler{api: api, logger: logger}
}

// Routes mounts the super-admin surface on a gated router.
func (h *SuperAdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.Dashboard)
	r.Get("/clinics", h.ListClinics)
	r.Post("/clinics", h.CreateClinic)
	r.Get("/plans", h.ListPlans)
	r.Put("/plans/{planID}", h.UpdatePlan)
	return r
}

// Dashboard handles GET /super-admin/dashboard.
func (h *SuperAdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	clinics, err := h.api.Clinics(r.Context(), sess.Token, 1)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	plans, err := h.api.Plans(r.Context(), sess.Token, 1)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clinics": clinics,
		"plans":   plans,
	})
}

func (h *SuperAdminHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.api.Clinics(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *SuperAdminHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var clinic identity.Clinic
	if err := json.NewDecoder(r.Body).Decode(&clinic); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := h.api.CreateClinic(r.Context(), sess.Token, clinic)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *SuperAdminHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.api.Plans(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *SuperAdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var p plan.Plan
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := h.api.UpdatePlan(r.Context(), sess.Token, chi.URLParam(r, "planID"), p)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
