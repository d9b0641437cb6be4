package upstream

import (
	"time"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/plan"
)

// LoginResponse is what every role login endpoint returns on success.
type LoginResponse struct {
	Token  string           `json:"token"`
	User   *identity.User   `json:"user"`
	Clinic *identity.Clinic `json:"clinic,omitempty"`
}

// SignupResponse is returned by patient registration. The account exists as
// soon as this comes back, whether or not the follow-up login succeeds.
type SignupResponse struct {
	User *identity.User `json:"user"`
}

// Profile is the clinic-admin profile aggregate.
type Profile struct {
	Admin  *identity.User `json:"admin"`
	Clinic *ProfileClinic `json:"clinic"`
	Plan   *plan.Plan     `json:"plan"`
}

// ProfileClinic is the clinic as the profile endpoint returns it, carrying
// an embedded plan some deployments use instead of the top-level field.
type ProfileClinic struct {
	identity.Clinic
	LogoURL   string     `json:"logo_url,omitempty"`
	BannerURL string     `json:"banner_url,omitempty"`
	Plan      *plan.Plan `json:"plan,omitempty"`
}

// Doctor is a practitioner attached to a clinic.
type Doctor struct {
	ID        string `json:"id"`
	ClinicID  string `json:"clinic_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty,omitempty"`
	Active    bool   `json:"active"`
}

// Slot is a bookable appointment window.
type Slot struct {
	ID       string    `json:"id"`
	DoctorID string    `json:"doctor_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Booked   bool      `json:"booked"`
}

// Appointment is a booked slot with its lifecycle status.
type Appointment struct {
	ID          string    `json:"id"`
	ClinicID    string    `json:"clinic_id"`
	DoctorID    string    `json:"doctor_id"`
	PatientID   string    `json:"patient_id"`
	SlotID      string    `json:"slot_id"`
	PatientName string    `json:"patient_name,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Payment is a settled or pending charge for a booking.
type Payment struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	AmountCents int       `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	PaidAt      time.Time `json:"paid_at,omitempty"`
}

// Review is patient feedback on a doctor or clinic.
type Review struct {
	ID        string    `json:"id"`
	ClinicID  string    `json:"clinic_id"`
	DoctorID  string    `json:"doctor_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Source    string    `json:"source,omitempty"` // "portal" or "google"
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry is one server-side audit log row.
type AuditEntry struct {
	ID        string    `json:"id"`
	ClinicID  string    `json:"clinic_id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClinicSettings is the mutable clinic configuration surface.
type ClinicSettings struct {
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
	BannerURL string `json:"banner_url,omitempty"`
}

// SlotRequest creates one or more slots; bulk requests carry a repeat rule.
type SlotRequest struct {
	DoctorID   string    `json:"doctor_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	RepeatDays int       `json:"repeat_days,omitempty"` // bulk: repeat daily for N days
}

// BookingRequest books a slot for a patient.
type BookingRequest struct {
	SlotID string `json:"slot_id"`
	Notes  string `json:"notes,omitempty"`
}
