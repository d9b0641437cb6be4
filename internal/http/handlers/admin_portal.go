package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicport/clinicport/internal/adminctx"
	"github.com/clinicport/clinicport/internal/plan"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// AdminAPI is the slice of the upstream client the clinic-admin area uses.
type AdminAPI interface {
	Doctors(ctx context.Context, token string, page int) (upstream.Page[upstream.Doctor], error)
	CreateDoctor(ctx context.Context, token string, d upstream.Doctor) (*upstream.Doctor, error)
	UpdateDoctor(ctx context.Context, token, doctorID string, d upstream.Doctor) (*upstream.Doctor, error)
	DeleteDoctor(ctx context.Context, token, doctorID string) error
	CreateSlots(ctx context.Context, token string, req upstream.SlotRequest) ([]upstream.Slot, error)
	AdminBookings(ctx context.Context, token string, page int) (upstream.Page[upstream.Appointment], error)
	Payments(ctx context.Context, token string, page int) (upstream.Page[upstream.Payment], error)
	Reviews(ctx context.Context, token string, page int) (upstream.Page[upstream.Review], error)
	GoogleReviews(ctx context.Context, token string, page int) (upstream.Page[upstream.Review], error)
	AuditLogs(ctx context.Context, token string, page int) (upstream.Page[upstream.AuditEntry], error)
	UpdateClinicSettings(ctx context.Context, token string, s upstream.ClinicSettings) (*upstream.ProfileClinic, error)
	Export(ctx context.Context, token, kind, format string) (*http.Response, error)
}

// AdminHandler serves the clinic-admin area: dashboard, doctors, slots,
// bookings, and the plan-gated pages.
type AdminHandler struct {
	api      AdminAPI
	provider *adminctx.Provider
	logger   *logging.Logger
}

// NewAdminHandler creates the clinic-admin handler.
func NewAdminHandler(api AdminAPI, provider *adminctx.Provider, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{api: api, provider: provider, logger: logger}
}

// Routes mounts the clinic-admin surface on a gated router.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.Dashboard)
	r.Get("/context", h.Context)
	r.Post("/context/reload", h.ReloadContext)
	r.Get("/doctors", h.ListDoctors)
	r.Post("/doctors", h.CreateDoctor)
	r.Put("/doctors/{doctorID}", h.UpdateDoctor)
	r.Delete("/doctors/{doctorID}", h.DeleteDoctor)
	r.Post("/slots", h.CreateSlots)
	r.Get("/bookings", h.ListBookings)
	r.Get("/payments", h.ListPayments)
	r.Get("/reviews", h.ListReviews)
	r.Get("/reviews/google", h.ListGoogleReviews)
	r.Get("/reviews/embed", h.EmbedReviews)
	r.Get("/audit-logs", h.ListAuditLogs)
	r.Get("/exports/{kind}.{format}", h.Export)
	r.Put("/settings", h.UpdateSettings)
	return r
}

// loadContext resolves the admin context for the current session; a nil
// return means "profile unavailable" and the caller decides how to degrade.
func (h *AdminHandler) loadContext(r *http.Request) (*session.Session, *adminctx.Context) {
	sess, _ := session.FromContext(r.Context())
	if sess == nil {
		return nil, nil
	}
	return sess, h.provider.Load(r.Context(), sess.ID, sess.Token)
}

// gate resolves the admin context and checks one plan feature. On denial it
// answers the shared upgrade-prompt payload and reports false; gated
// handlers must not touch upstream afterwards.
func (h *AdminHandler) gate(w http.ResponseWriter, r *http.Request, f plan.Feature) (*session.Session, bool) {
	sess, actx := h.loadContext(r)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "no session")
		return nil, false
	}
	var p *plan.Plan
	if actx != nil {
		p = actx.Plan
	}
	res := plan.Gate(p, f)
	if !res.Allowed {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": res.UpgradeMessage,
			"gate":  res,
		})
		return sess, false
	}
	return sess, true
}

// Context handles GET /admin/context.
func (h *AdminHandler) Context(w http.ResponseWriter, r *http.Request) {
	_, actx := h.loadContext(r)
	if actx == nil {
		writeJSON(w, http.StatusOK, map[string]any{"admin": nil})
		return
	}
	writeJSON(w, http.StatusOK, actx)
}

// ReloadContext handles POST /admin/context/reload, called after any
// mutation that could change the plan.
func (h *AdminHandler) ReloadContext(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	actx := h.provider.Reload(r.Context(), sess.ID, sess.Token)
	if actx == nil {
		writeJSON(w, http.StatusOK, map[string]any{"admin": nil})
		return
	}
	writeJSON(w, http.StatusOK, actx)
}

// Dashboard handles GET /admin/dashboard: the context plus recent bookings.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, actx := h.loadContext(r)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	bookings, err := h.api.AdminBookings(r.Context(), sess.Token, 1)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"context":  actx,
		"bookings": bookings,
	})
}

func (h *AdminHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.api.Doctors(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var d upstream.Doctor
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := h.api.CreateDoctor(r.Context(), sess.Token, d)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	doctorID := chi.URLParam(r, "doctorID")
	var d upstream.Doctor
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := h.api.UpdateDoctor(r.Context(), sess.Token, doctorID, d)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if err := h.api.DeleteDoctor(r.Context(), sess.Token, chi.URLParam(r, "doctorID")); err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSlots handles POST /admin/slots. Single slots are always allowed;
// a repeat rule makes it a bulk request, which the plan must unlock.
func (h *AdminHandler) CreateSlots(w http.ResponseWriter, r *http.Request) {
	var req upstream.SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var sess *session.Session
	if req.RepeatDays > 0 {
		var ok bool
		if sess, ok = h.gate(w, r, plan.FeatureBulkSlots); !ok {
			return
		}
	} else {
		sess, _ = session.FromContext(r.Context())
	}

	slots, err := h.api.CreateSlots(r.Context(), sess.Token, req)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, slots)
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.api.AdminBookings(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate(w, r, plan.FeatureOnlinePayments)
	if !ok {
		return
	}
	page, err := h.api.Payments(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate(w, r, plan.FeatureReviews)
	if !ok {
		return
	}
	page, err := h.api.Reviews(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) ListGoogleReviews(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate(w, r, plan.FeatureGoogleReviews)
	if !ok {
		return
	}
	page, err := h.api.GoogleReviews(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// EmbedReviews serves the embeddable-widget data, a separate plan unlock
// from the in-portal review list.
func (h *AdminHandler) EmbedReviews(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate(w, r, plan.FeatureEmbedReviews)
	if !ok {
		return
	}
	page, err := h.api.Reviews(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"embeddable": true, "reviews": page})
}

// ListAuditLogs handles GET /admin/audit-logs. When the plan denies the
// feature, no upstream fetch is issued at all.
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate(w, r, plan.FeatureAuditLogs)
	if !ok {
		return
	}
	page, err := h.api.AuditLogs(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Export handles GET /admin/exports/{kind}.{format}: plan-gated binary
// passthrough of the upstream Excel/PDF stream.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate(w, r, plan.FeatureExports)
	if !ok {
		return
	}
	kind := chi.URLParam(r, "kind")
	format := chi.URLParam(r, "format")
	if format != "xlsx" && format != "pdf" {
		writeError(w, http.StatusBadRequest, "format must be xlsx or pdf")
		return
	}

	resp, err := h.api.Export(r.Context(), sess.Token, kind, format)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("export stream interrupted", "kind", kind, "error", err)
	}
}

type settingsRequest struct {
	upstream.ClinicSettings
}

// UpdateSettings handles PUT /admin/settings. Branding fields are rejected
// outright when the plan does not allow custom branding, naming the feature
// so the form can show the upgrade notice next to the disabled inputs.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, actx := h.loadContext(r)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	if req.LogoURL != "" || req.BannerURL != "" {
		var p *plan.Plan
		if actx != nil {
			p = actx.Plan
		}
		if res := plan.Gate(p, plan.FeatureCustomBranding); !res.Allowed {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": res.UpgradeMessage,
				"gate":  res,
			})
			return
		}
	}

	clinic, err := h.api.UpdateClinicSettings(r.Context(), sess.Token, req.ClinicSettings)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}

	// Settings changes can ripple into the cached context.
	h.provider.Reload(r.Context(), sess.ID, sess.Token)
	writeJSON(w, http.StatusOK, clinic)
}
