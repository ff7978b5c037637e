package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver/helpers"
)

// Auth failure reasons reported to metrics.
const (
	reasonNoCookie  = "no_cookie"
	reasonNoSession = "no_session"
	reasonRole      = "role"
)

// SessionMiddleware resolves the session cookie against the session store and
// enforces role membership before a handler runs.
type SessionMiddleware struct {
	sessions ports.SessionStore
	cookie   *helpers.SessionCookie
	metrics  *MetricsMiddleware
	logger   *logrus.Logger
}

func NewSessionMiddleware(sessions ports.SessionStore, cookie *helpers.SessionCookie, metrics *MetricsMiddleware, logger *logrus.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, cookie: cookie, metrics: metrics, logger: logger}
}

// Resolve returns the live session carried by the request's cookie.
func (m *SessionMiddleware) Resolve(c echo.Context) (*auth.Session, error) {
	sess, _, err := m.resolve(c)
	return sess, err
}

func (m *SessionMiddleware) resolve(c echo.Context) (*auth.Session, string, error) {
	id, ok := m.cookie.ReadSessionID(c)
	if !ok {
		return nil, reasonNoCookie, auth.ErrUnauthenticated
	}
	sess, ok := m.sessions.Get(c.Request().Context(), id)
	if !ok {
		return nil, reasonNoSession, auth.ErrUnauthenticated
	}
	return sess, "", nil
}

// RequireSession admits requests with a live session whose role is in allowed.
// An empty allowed set admits any authenticated session. It panics on a role
// outside the closed set, so misconfigured routes fail at startup.
func (m *SessionMiddleware) RequireSession(allowed ...user.Role) echo.MiddlewareFunc {
	for _, r := range allowed {
		if !r.IsValid() {
			panic(fmt.Sprintf("session middleware: unknown role %q", r))
		}
	}
	roles := append([]user.Role(nil), allowed...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, reason, err := m.resolve(c)
			if err != nil {
				m.reject(c, reason, nil)
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated").SetInternal(err)
			}
			if !sess.HasRole(roles...) {
				m.reject(c, reasonRole, sess)
				return echo.NewHTTPError(http.StatusForbidden, "forbidden").SetInternal(auth.ErrForbidden)
			}

			helpers.SetSession(c, sess)
			return next(c)
		}
	}
}

// Guard wraps a single handler with RequireSession.
func (m *SessionMiddleware) Guard(h echo.HandlerFunc, allowed ...user.Role) echo.HandlerFunc {
	return m.RequireSession(allowed...)(h)
}

func (m *SessionMiddleware) reject(c echo.Context, reason string, sess *auth.Session) {
	m.metrics.ObserveAuthFailure(reason)
	if m.logger == nil {
		return
	}
	fields := logrus.Fields{"reason": reason, "path": c.Request().URL.Path, "method": c.Request().Method}
	if sess != nil {
		fields["subject_id"] = sess.SubjectID
		fields["role"] = sess.Role
		m.logger.WithFields(fields).Warn("session guard: role not permitted")
		return
	}
	m.logger.WithFields(fields).Debug("session guard: unauthenticated request")
}
