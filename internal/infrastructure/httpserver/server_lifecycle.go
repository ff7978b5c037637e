package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Start serves until Shutdown. Timeouts from ServerConfig apply to both the
// plain and the TLS listener.
func (s *Server) Start() error {
	s.LogMetricsInitialization()

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	for _, srv := range []*http.Server{s.echo.Server, s.echo.TLSServer} {
		srv.ReadTimeout = s.config.ReadTimeout
		srv.WriteTimeout = s.config.WriteTimeout
		srv.IdleTimeout = s.config.IdleTimeout
	}

	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		s.logger.WithField("addr", addr).Info("gatekeeper listening (https)")
		return s.echo.StartTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	}

	s.logger.WithField("addr", addr).Info("gatekeeper listening (http)")
	if !s.config.CookieSecure {
		s.logger.Warn("session cookies are issued without the Secure flag; set SESSION_COOKIE_SECURE behind a TLS proxy")
	}
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router, mainly for httptest.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
