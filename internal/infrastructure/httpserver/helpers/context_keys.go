package helpers

import (
	"github.com/labstack/echo/v4"

	"github.com/nfaa/webapp/internal/core/domain/auth"
)

type ctxKey string

const (
	keySession  ctxKey = "session"
	keyClientID ctxKey = "client_id"
)

// SetSession attaches the resolved session to both the echo context and the
// request's context.Context so services further down can read it.
func SetSession(c echo.Context, s *auth.Session) {
	c.Set(string(keySession), s)
	req := c.Request()
	c.SetRequest(req.WithContext(auth.ContextWithSession(req.Context(), s)))
}

func GetSessionRaw(c echo.Context) (*auth.Session, bool) {
	v := c.Get(string(keySession))
	s, ok := v.(*auth.Session)
	return s, ok && s != nil
}

func SetClientID(c echo.Context, id string) { c.Set(string(keyClientID), id) }
func GetClientIDRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyClientID))
	s, ok := v.(string)
	return s, ok
}
