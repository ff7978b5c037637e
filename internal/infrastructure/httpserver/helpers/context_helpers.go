package helpers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfaa/webapp/internal/core/domain/auth"
)

// GetSessionFromContext returns the session set by the session guard
func GetSessionFromContext(c echo.Context) (*auth.Session, error) {
	s, ok := GetSessionRaw(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session context")
	}
	return s, nil
}
