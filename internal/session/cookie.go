package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Cookies signs and reads the session-id cookie. The cookie carries only an
// HMAC-signed session id; everything else lives in the store.
type Cookies struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCookies builds the cookie codec. secure should be true outside
// development so the cookie is HTTPS-only.
func NewCookies(name, secret string, ttl time.Duration, secure bool) *Cookies {
	if name == "" {
		name = "cp_session"
	}
	return &Cookies{name: name, secret: []byte(secret), ttl: ttl, secure: secure}
}

// NewSID mints a fresh session id.
func NewSID() string {
	return uuid.NewString()
}

// Issue returns a signed session cookie for sid.
func (c *Cookies) Issue(sid string) (*http.Cookie, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Expire returns a cookie that removes the session cookie from the browser.
func (c *Cookies) Expire() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ReadSID extracts and verifies the session id from the request cookie.
// A missing, expired or tampered cookie yields ("", false).
func (c *Cookies) ReadSID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
