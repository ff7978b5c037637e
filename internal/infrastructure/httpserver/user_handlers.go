package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nfaa/webapp/internal/core/domain/user"
)

// getUser returns a user's public profile. Guarded to analysts and admins.
func (s *Server) getUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	u, err := s.userRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get user").SetInternal(err)
	}
	return c.JSON(http.StatusOK, u.Profile())
}
