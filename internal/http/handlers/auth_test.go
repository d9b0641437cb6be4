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

	"github.com/clinicport/clinicport/internal/auth"
	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
)

type fakeAuthAPI struct {
	loginResp   *upstream.LoginResponse
	loginErr    error
	signupErr   error
	loginCalls  int
	signupCalls int
}

func (f *fakeAuthAPI) Login(context.Context, identity.Role, identity.Credentials) (*upstream.LoginResponse, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeAuthAPI) Signup(context.Context, identity.SignupRequest) (*upstream.SignupResponse, error) {
	f.signupCalls++
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &upstream.SignupResponse{User: &identity.User{ID: "p1"}}, nil
}

func newAuthHandler(t *testing.T, api *fakeAuthAPI) (*AuthHandler, *session.Store, *session.Cookies) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := session.NewStore(client, time.Hour)
	cookies := session.NewCookies("cp_session", "test-secret", time.Hour, false)
	svc := auth.NewService(api, store, nil, nil)
	return NewAuthHandler(svc, store, cookies, nil), store, cookies
}

func TestPatientLoginSuccess(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &upstream.LoginResponse{
		Token: "tok-1",
		User:  &identity.User{ID: "u1", Role: identity.RoleUser},
	}}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"email":"p@example.com","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()
	h.PatientLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/app/bookings", resp.Redirect)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cp_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestLoginNextOverridesDashboard(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &upstream.LoginResponse{
		Token: "tok-1",
		User:  &identity.User{ID: "d1", Role: identity.RoleDoctor},
	}}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"email":"d@example.com","password":"pw","next":"/doctor/appointments"}`)
	req := httptest.NewRequest(http.MethodPost, "/doctor/login", body)
	rec := httptest.NewRecorder()
	h.DoctorLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/doctor/appointments", resp.Redirect)
}

func TestLoginRejectsProtocolRelativeNext(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &upstream.LoginResponse{
		Token: "tok-1",
		User:  &identity.User{ID: "u1", Role: identity.RoleUser},
	}}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"email":"p@example.com","password":"pw","next":"//evil.example"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()
	h.PatientLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/app/bookings", resp.Redirect)
}

func TestLoginFailureSurfacesUpstreamMessage(t *testing.T) {
	api := &fakeAuthAPI{loginErr: &upstream.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"email":"p@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", body)
	rec := httptest.NewRecorder()
	h.AdminLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginUpstreamDownIsGeneric(t *testing.T) {
	api := &fakeAuthAPI{loginErr: upstream.ErrUnavailable}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"email":"p@example.com","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()
	h.PatientLogin(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "login is temporarily unavailable")
}

func TestSignupPasswordMismatchSkipsNetwork(t *testing.T) {
	api := &fakeAuthAPI{}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"name":"Pat","email":"p@example.com","password":"pw","confirm_password":"other"}`)
	req := httptest.NewRequest(http.MethodPost, "/signup", body)
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")
	assert.Zero(t, api.signupCalls)
	assert.Zero(t, api.loginCalls)
}

func TestSignupAutoLoginFailureStillReportsAccount(t *testing.T) {
	api := &fakeAuthAPI{loginErr: upstream.ErrUnavailable}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"name":"Pat","email":"p@example.com","password":"pw","confirm_password":"pw","next":"/app/bookings"}`)
	req := httptest.NewRequest(http.MethodPost, "/signup", body)
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AccountCreated bool   `json:"account_created"`
		Redirect       string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AccountCreated)
	assert.Equal(t, "/login?next=/app/bookings", resp.Redirect)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignupSuccessLogsIn(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &upstream.LoginResponse{
		Token: "tok-1",
		User:  &identity.User{ID: "p1", Role: identity.RoleUser},
	}}
	h, _, _ := newAuthHandler(t, api)

	body := strings.NewReader(`{"name":"Pat","email":"p@example.com","password":"pw","confirm_password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/signup", body)
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AccountCreated bool   `json:"account_created"`
		Redirect       string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AccountCreated)
	assert.Equal(t, "/app/bookings", resp.Redirect)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestLogoutClearsSessionAndCookie(t *testing.T) {
	api := &fakeAuthAPI{}
	h, store, cookies := newAuthHandler(t, api)

	sid := session.NewSID()
	user := &identity.User{ID: "u1", Role: identity.RoleUser}
	require.NoError(t, store.Establish(context.Background(), sid, "tok", user, nil))
	cookie, err := cookies.Issue(sid)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	sess, err := store.Hydrate(context.Background(), sid)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	out := rec.Result().Cookies()
	require.Len(t, out, 1)
	assert.True(t, out[0].MaxAge < 0 || out[0].Expires.Before(time.Now()))
}

func TestSessionEndpointWithoutCookie(t *testing.T) {
	api := &fakeAuthAPI{}
	h, _, _ := newAuthHandler(t, api)

	rec := httptest.NewRecorder()
	h.Session(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.False(t, sess.Authenticated())
}
