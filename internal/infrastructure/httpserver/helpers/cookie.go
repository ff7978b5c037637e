package helpers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DefaultSessionCookieName is used when no name is configured.
const DefaultSessionCookieName = "nfaa_sid"

// SessionCookie binds a session id to an HTTP cookie. It is the only code that
// reads or writes the session cookie and performs no authenticity checks.
type SessionCookie struct {
	Name string
	// ForceSecure sets the Secure attribute even on plain-HTTP requests,
	// for deployments where TLS terminates at a proxy.
	ForceSecure bool
}

func NewSessionCookie(name string, forceSecure bool) *SessionCookie {
	if name == "" {
		name = DefaultSessionCookieName
	}
	return &SessionCookie{Name: name, ForceSecure: forceSecure}
}

// ReadSessionID extracts the session id; ok=false when the cookie is missing or empty.
func (sc *SessionCookie) ReadSessionID(c echo.Context) (string, bool) {
	ck, err := c.Cookie(sc.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Write sets the session cookie with the given max age.
func (sc *SessionCookie) Write(c echo.Context, sessionID string, maxAgeSeconds int) {
	c.SetCookie(sc.cookie(c, sessionID, maxAgeSeconds))
}

// Clear overwrites the cookie with an empty value that expires immediately.
func (sc *SessionCookie) Clear(c echo.Context) {
	// MaxAge<0 renders as "Max-Age=0"
	c.SetCookie(sc.cookie(c, "", -1))
}

func (sc *SessionCookie) cookie(c echo.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sc.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sc.ForceSecure || c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	}
}
