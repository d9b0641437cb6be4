package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieRoundTrip(t *testing.T) {
	cookies := NewCookies("cp_session", "secret-1", time.Hour, false)
	sid := NewSID()

	cookie, err := cookies.Issue(sid)
	require.NoError(t, err)
	assert.True(t, cookie.HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.AddCookie(cookie)

	got, ok := cookies.ReadSID(r)
	require.True(t, ok)
	assert.Equal(t, sid, got)
}

func TestCookieTamperRejected(t *testing.T) {
	issuer := NewCookies("cp_session", "secret-1", time.Hour, false)
	reader := NewCookies("cp_session", "different-secret", time.Hour, false)

	cookie, err := issuer.Issue(NewSID())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)

	_, ok := reader.ReadSID(r)
	assert.False(t, ok, "cookie signed with another secret must not verify")
}

func TestCookieMissing(t *testing.T) {
	cookies := NewCookies("cp_session", "secret-1", time.Hour, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := cookies.ReadSID(r)
	assert.False(t, ok)
}

func TestExpireCookie(t *testing.T) {
	cookies := NewCookies("cp_session", "secret-1", time.Hour, true)
	expired := cookies.Expire()
	assert.Equal(t, -1, expired.MaxAge)
	assert.Empty(t, expired.Value)
	assert.True(t, expired.Secure)
}
