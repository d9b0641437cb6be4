package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/plan"
)

// loginPath maps a role to its upstream login endpoint. Clinic admins log in
// through the organization endpoint; there is no second generic-login path
// for them.
func loginPath(role identity.Role) string {
	switch role {
	case identity.RoleSuperAdmin:
		return "/api/auth/super-admin/login"
	case identity.RoleAdmin:
		return "/api/auth/organization/login"
	case identity.RoleDoctor:
		return "/api/auth/doctor/login"
	default:
		return "/api/auth/login"
	}
}

// Login posts credentials to the role-specific endpoint.
func (c *Client) Login(ctx context.Context, role identity.Role, creds identity.Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, loginPath(role), "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a patient account.
func (c *Client) Signup(ctx context.Context, req identity.SignupRequest) (*SignupResponse, error) {
	var out SignupResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the clinic-admin profile aggregate (admin + clinic + plan).
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/api/admin/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getBytes reads a whole response body for list decoding.
func (c *Client) getBytes(ctx context.Context, path, token string) ([]byte, error) {
	resp, err := c.doRaw(ctx, http.MethodGet, path, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: read %s: %w", path, err)
	}
	return data, nil
}

// list fetches and decodes a paginated endpoint through the shared decoder.
func list[T any](ctx context.Context, c *Client, token, path string, page int) (Page[T], error) {
	if page > 0 {
		sep := "?"
		if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		path = fmt.Sprintf("%s%spage=%d", path, sep, page)
	}
	data, err := c.getBytes(ctx, path, token)
	if err != nil {
		return Page[T]{}, err
	}
	return DecodeList[T](data)
}

// Clinic-admin surface.

func (c *Client) Doctors(ctx context.Context, token string, page int) (Page[Doctor], error) {
	return list[Doctor](ctx, c, token, "/api/admin/doctors", page)
}

func (c *Client) CreateDoctor(ctx context.Context, token string, d Doctor) (*Doctor, error) {
	var out Doctor
	if err := c.do(ctx, http.MethodPost, "/api/admin/doctors", token, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDoctor(ctx context.Context, token, doctorID string, d Doctor) (*Doctor, error) {
	var out Doctor
	path := "/api/admin/doctors/" + url.PathEscape(doctorID)
	if err := c.do(ctx, http.MethodPut, path, token, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, token, doctorID string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/doctors/"+url.PathEscape(doctorID), token, nil, nil)
}

func (c *Client) CreateSlots(ctx context.Context, token string, req SlotRequest) ([]Slot, error) {
	var out []Slot
	if err := c.do(ctx, http.MethodPost, "/api/admin/slots", token, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminBookings(ctx context.Context, token string, page int) (Page[Appointment], error) {
	return list[Appointment](ctx, c, token, "/api/admin/bookings", page)
}

func (c *Client) Payments(ctx context.Context, token string, page int) (Page[Payment], error) {
	return list[Payment](ctx, c, token, "/api/admin/payments", page)
}

func (c *Client) Reviews(ctx context.Context, token string, page int) (Page[Review], error) {
	return list[Review](ctx, c, token, "/api/admin/reviews", page)
}

func (c *Client) GoogleReviews(ctx context.Context, token string, page int) (Page[Review], error) {
	return list[Review](ctx, c, token, "/api/admin/reviews/google", page)
}

func (c *Client) AuditLogs(ctx context.Context, token string, page int) (Page[AuditEntry], error) {
	return list[AuditEntry](ctx, c, token, "/api/admin/audit-logs", page)
}

func (c *Client) UpdateClinicSettings(ctx context.Context, token string, s ClinicSettings) (*ProfileClinic, error) {
	var out ProfileClinic
	if err := c.do(ctx, http.MethodPut, "/api/admin/clinic", token, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export streams a binary report (Excel or PDF). The caller must close the
// returned body.
func (c *Client) Export(ctx context.Context, token, kind, format string) (*http.Response, error) {
	path := fmt.Sprintf("/api/admin/export/%s.%s", url.PathEscape(kind), url.PathEscape(format))
	return c.doRaw(ctx, http.MethodGet, path, token)
}

// Super-admin surface.

func (c *Client) Clinics(ctx context.Context, token string, page int) (Page[identity.Clinic], error) {
	return list[identity.Clinic](ctx, c, token, "/api/super-admin/clinics", page)
}

func (c *Client) CreateClinic(ctx context.Context, token string, clinic identity.Clinic) (*identity.Clinic, error) {
	var out identity.Clinic
	if err := c.do(ctx, http.MethodPost, "/api/super-admin/clinics", token, clinic, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Plans(ctx context.Context, token string, page int) (Page[plan.Plan], error) {
	return list[plan.Plan](ctx, c, token, "/api/super-admin/plans", page)
}

func (c *Client) UpdatePlan(ctx context.Context, token, planID string, p plan.Plan) (*plan.Plan, error) {
	var out plan.Plan
	path := "/api/super-admin/plans/" + url.PathEscape(planID)
	if err := c.do(ctx, http.MethodPut, path, token, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Doctor surface.

func (c *Client) DoctorAppointments(ctx context.Context, token string, page int) (Page[Appointment], error) {
	return list[Appointment](ctx, c, token, "/api/doctor/appointments", page)
}

func (c *Client) DoctorSlots(ctx context.Context, token string, page int) (Page[Slot], error) {
	return list[Slot](ctx, c, token, "/api/doctor/slots", page)
}

// UpdateAppointmentStatus patches one appointment's lifecycle status and
// returns the server's reconciled row.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, token, appointmentID, status string) (*Appointment, error) {
	var out Appointment
	path := "/api/appointments/" + url.PathEscape(appointmentID) + "/status"
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, path, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Patient surface.

func (c *Client) BrowseDoctors(ctx context.Context, page int) (Page[Doctor], error) {
	return list[Doctor](ctx, c, "", "/api/doctors", page)
}

func (c *Client) DoctorOpenSlots(ctx context.Context, doctorID string, page int) (Page[Slot], error) {
	return list[Slot](ctx, c, "", "/api/doctors/"+url.PathEscape(doctorID)+"/slots", page)
}

func (c *Client) Book(ctx context.Context, token string, req BookingRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/api/bookings", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyBookings(ctx context.Context, token string, page int) (Page[Appointment], error) {
	return list[Appointment](ctx, c, token, "/api/my/bookings", page)
}

func (c *Client) Reschedule(ctx context.Context, token, bookingID, slotID string) (*Appointment, error) {
	var out Appointment
	path := "/api/bookings/" + url.PathEscape(bookingID) + "/reschedule"
	body := map[string]string{"slot_id": slotID}
	if err := c.do(ctx, http.MethodPatch, path, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
