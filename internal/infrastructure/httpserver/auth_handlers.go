package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
)

type userResponse struct {
	User *user.PublicProfile `json:"user"`
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, u, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create session").SetInternal(err)
	}

	s.cookie.Write(c, sess.ID, int(s.authSvc.SessionTTL().Seconds()))

	profile := u.Profile()
	return c.JSON(http.StatusOK, userResponse{User: &profile})
}

// logout succeeds with or without a session.
func (s *Server) logout(c echo.Context) error {
	if id, ok := s.cookie.ReadSessionID(c); ok {
		if err := s.authSvc.Logout(c.Request().Context(), id); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("logout: failed to delete session")
		}
	}
	s.cookie.Clear(c)
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) me(c echo.Context) error {
	sess, err := s.middleware.Session.Resolve(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, userResponse{})
	}

	u, err := s.authSvc.CurrentUser(c.Request().Context(), sess)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_id": sess.SubjectID}).WithError(err).Debug("me: session user unavailable")
		}
		return c.JSON(http.StatusUnauthorized, userResponse{})
	}

	profile := u.Profile()
	return c.JSON(http.StatusOK, userResponse{User: &profile})
}
