package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicport/clinicport/internal/appointments"
	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
)

type fakeDoctorUpstream struct {
	list      []upstream.Appointment
	updateErr error
}

func (f *fakeDoctorUpstream) DoctorSlots(context.Context, string, int) (upstream.Page[upstream.Slot], error) {
	return upstream.Page[upstream.Slot]{Items: []upstream.Slot{{ID: "s1"}}}, nil
}

func (f *fakeDoctorUpstream) DoctorAppointments(context.Context, string, int) (upstream.Page[upstream.Appointment], error) {
	out := make([]upstream.Appointment, len(f.list))
	copy(out, f.list)
	return upstream.Page[upstream.Appointment]{Items: out}, nil
}

func (f *fakeDoctorUpstream) UpdateAppointmentStatus(_ context.Context, _, appointmentID, status string) (*upstream.Appointment, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, a := range f.list {
		if a.ID == appointmentID {
			a.Status = status
			a.DoctorName = "Dr. Reconciled"
			return &a, nil
		}
	}
	return nil, &upstream.APIError{Status: http.StatusNotFound, Message: "appointment not found"}
}

func doctorServer(t *testing.T, api *fakeDoctorUpstream) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := appointments.NewService(api, appointments.NewCache(client, time.Minute), nil)
	h := NewDoctorHandler(api, svc, nil)
	sess := &session.Session{
		ID:    session.NewSID(),
		Token: "tok",
		User:  &identity.User{ID: "d1", Role: identity.RoleDoctor},
	}
	return withSession(h.Routes(), sess)
}

func pending() []upstream.Appointment {
	return []upstream.Appointment{
		{ID: "a1", Status: "PENDING", PatientName: "Pat One"},
		{ID: "a2", Status: "PENDING", PatientName: "Pat Two"},
	}
}

func TestStatusUpdateReturnsReconciledList(t *testing.T) {
	api := &fakeDoctorUpstream{list: pending()}
	srv := doctorServer(t, api)

	req := httptest.NewRequest(http.MethodPatch, "/appointments/a1/status",
		strings.NewReader(`{"status":"CONFIRMED"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Appointments []upstream.Appointment `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Appointments, 2)
	assert.Equal(t, "CONFIRMED", resp.Appointments[0].Status)
	assert.Equal(t, "Dr. Reconciled", resp.Appointments[0].DoctorName)
	assert.Equal(t, "PENDING", resp.Appointments[1].Status)
}

func TestStatusUpdateFailureRollsBack(t *testing.T) {
	api := &fakeDoctorUpstream{list: pending(), updateErr: upstream.ErrUnavailable}
	srv := doctorServer(t, api)

	req := httptest.NewRequest(http.MethodPatch, "/appointments/a1/status",
		strings.NewReader(`{"status":"CONFIRMED"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp struct {
		Error        string                 `json:"error"`
		Appointments []upstream.Appointment `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "rolled back")
	require.Len(t, resp.Appointments, 2)
	assert.Equal(t, "PENDING", resp.Appointments[0].Status)
}

func TestStatusUpdateRequiresStatus(t *testing.T) {
	srv := doctorServer(t, &fakeDoctorUpstream{list: pending()})

	req := httptest.NewRequest(http.MethodPatch, "/appointments/a1/status",
		strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoctorDashboard(t *testing.T) {
	srv := doctorServer(t, &fakeDoctorUpstream{list: pending()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a1"`)
	assert.Contains(t, rec.Body.String(), `"s1"`)
}
