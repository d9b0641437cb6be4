package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// PatientAPI is the slice of the upstream client the patient area uses.
type PatientAPI interface {
	BrowseDoctors(ctx context.Context, page int) (upstream.Page[upstream.Doctor], error)
	DoctorOpenSlots(ctx context.Context, doctorID string, page int) (upstream.Page[upstream.Slot], error)
	Book(ctx context.Context, token string, req upstream.BookingRequest) (*upstream.Appointment, error)
	MyBookings(ctx context.Context, token string, page int) (upstream.Page[upstream.Appointment], error)
	Reschedule(ctx context.Context, token, bookingID, slotID string) (*upstream.Appointment, error)
}

// PatientHandler serves the patient area: browsing, booking, and the
// reschedule slot picker.
type PatientHandler struct {
	api    PatientAPI
	logger *logging.Logger
}

func NewPatientHandler(api PatientAPI, logger *logging.Logger) *PatientHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientHandler{api: api, logger: logger}
}

// Routes mounts the authenticated patient surface on a gated router. The
// browse endpoints are public and mounted separately.
func (h *PatientHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/bookings", h.MyBookings)
	r.Post("/bookings", h.Book)
	r.Get("/bookings/{bookingID}/slots", h.RescheduleSlots)
	r.Patch("/bookings/{bookingID}/reschedule", h.Reschedule)
	return r
}

// BrowseDoctors handles GET /doctors (public).
func (h *PatientHandler) BrowseDoctors(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.BrowseDoctors(r.Context(), pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DoctorSlots handles GET /doctors/{doctorID}/slots (public).
func (h *PatientHandler) DoctorSlots(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.DoctorOpenSlots(r.Context(), chi.URLParam(r, "doctorID"), pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PatientHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	page, err := h.api.MyBookings(r.Context(), sess.Token, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PatientHandler) Book(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req upstream.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, "slot_id required")
		return
	}
	appt, err := h.api.Book(r.Context(), sess.Token, req)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// RescheduleSlots feeds the reschedule slot-picker: the open slots of the
// booking's doctor.
func (h *PatientHandler) RescheduleSlots(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	bookingID := chi.URLParam(r, "bookingID")

	// Resolve the booking's doctor from the patient's own list; a patient
	// cannot open the picker for someone else's booking.
	bookings, err := h.api.MyBookings(r.Context(), sess.Token, 0)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	var doctorID string
	for _, b := range bookings.Items {
		if b.ID == bookingID {
			doctorID = b.DoctorID
			break
		}
	}
	if doctorID == "" {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}

	slots, err := h.api.DoctorOpenSlots(r.Context(), doctorID, pageParam(r))
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

type rescheduleRequest struct {
	SlotID string `json:"slot_id"`
}

func (h *PatientHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, "slot_id required")
		return
	}
	appt, err := h.api.Reschedule(r.Context(), sess.Token, chi.URLParam(r, "bookingID"), req.SlotID)
	if err != nil {
		writeUpstreamError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}
