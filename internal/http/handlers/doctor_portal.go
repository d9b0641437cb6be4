package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicport/clinicport/internal/appointments"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// DoctorAPI is the slice of the upstream client the doctor area uses beyond
// the appointments service.
type DoctorAPI interface {
	DoctorSlots(ctx context.Context, token string, page int) (upstream.Page[upstream.Slot], error)
}

// DoctorHandler serves the doctor dashboard: own slots and appointments,
// with the optimistic status update.
type DoctorHandler struct {
	api          DoctorAPI
	appointments *appointments.Service
	logger       *logging.Logger
}

func NewDoctorHandler(api DoctorAPI, appts *appointments.Service, logger *logging.Logger) *DoctorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DoctorHandler{api: api, appointments: appts, logger: logger}
}

// Routes mounts the doctor surface on a gated router.
func (h *DoctorHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.Dashboard)
	r.Get("/appointments", h.ListAppointments)
	r.Patch("/appointments/{appointmentID}/status", h.UpdateAppointmentStatus)
	r.Get("/slots", h.ListSlots)
	return r
}

// Dashboard handles GET /doctor/dashboard: upcoming appointments and slots.
func (h *DoctorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	appts, err := h.appointments.List(r.Context(), sess, 1)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	slots, err := h.api.DoctorSlots(r.Context(), sess.Token, 1)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"slots":        slots,
	})
}

func (h *DoctorHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.appointments.List(r.Context(), sess, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateAppointmentStatus handles PATCH /doctor/appointments/{id}/status.
// The response always carries the list the client should now show: the
// reconciled one on success, the restored snapshot on failure.
func (h *DoctorHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status required")
		return
	}

	list, err := h.appointments.UpdateStatus(r.Context(), sess, chi.URLParam(r, "appointmentID"), req.Status)
	if err != nil {
		h.logger.Error("appointment status update failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":        "the status change did not stick and was rolled back",
			"appointments": list,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": list})
}

func (h *DoctorHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.api.DoctorSlots(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
