package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/plan"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
)

type fakeSuperAdminAPI struct {
	updated *plan.Plan
}

func (f *fakeSuperAdminAPI) Clinics(context.Context, string, int) (upstream.Page[identity.Clinic], error) {
	return upstream.Page[identity.Clinic]{Items: []identity.Clinic{{ID: "c1", Name: "North Clinic"}}}, nil
}

func (f *fakeSuperAdminAPI) CreateClinic(_ context.Context, _ string, c identity.Clinic) (*identity.Clinic, error) {
	c.ID = "c-new"
	return &c, nil
}

func (f *fakeSuperAdminAPI) Plans(context.Context, string, int) (upstream.Page[plan.Plan], error) {
	return upstream.Page[plan.Plan]{Items: []plan.Plan{{ID: "pl1", Name: "Starter"}}}, nil
}

func (f *fakeSuperAdminAPI) UpdatePlan(_ context.Context, _, planID string, p plan.Plan) (*plan.Plan, error) {
	p.ID = planID
	f.updated = &p
	return &p, nil
}

func superAdminServer(api *fakeSuperAdminAPI) http.Handler {
	h := NewSuperAdminHandler(api, nil)
	sess := &session.Session{
		ID:    session.NewSID(),
		Token: "tok",
		User:  &identity.User{ID: "sa1", Role: identity.RoleSuperAdmin},
	}
	return withSession(h.Routes(), sess)
}

func TestSuperAdminDashboard(t *testing.T) {
	srv := superAdminServer(&fakeSuperAdminAPI{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "North Clinic")
	assert.Contains(t, rec.Body.String(), "Starter")
}

func TestUpdatePlanTogglesFeature(t *testing.T) {
	api := &fakeSuperAdminAPI{}
	srv := superAdminServer(api)

	body := strings.NewReader(`{"name":"Starter","enableAuditLogs":true}`)
	req := httptest.NewRequest(http.MethodPut, "/plans/pl1", body)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated plan.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "pl1", updated.ID)
	assert.True(t, updated.EnableAuditLogs)
	require.NotNil(t, api.updated)
	assert.True(t, api.updated.EnableAuditLogs)
}

func TestCreateClinic(t *testing.T) {
	srv := superAdminServer(&fakeSuperAdminAPI{})

	body := strings.NewReader(`{"name":"South Clinic","timezone":"Europe/Berlin"}`)
	req := httptest.NewRequest(http.MethodPost, "/clinics", body)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "c-new")
}
