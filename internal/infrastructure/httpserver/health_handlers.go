package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	serviceName    = "nfaa-webapp"
	serviceVersion = "1.0.0"
	healthTimeout  = 2 * time.Second
)

type healthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Version      string            `json:"version"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

// healthCheck probes every dependency; any failure downgrades the status to
// "degraded" and answers 503.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{
		Status:       "healthy",
		Timestamp:    s.clock.Now().UTC().Format(time.RFC3339),
		Version:      serviceVersion,
		Service:      serviceName,
		Dependencies: make(map[string]string, len(s.healthCheckers)),
	}
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			resp.Dependencies[hc.Name()] = "unhealthy"
			resp.Status = "degraded"
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"dependency": hc.Name()}).WithError(err).Warn("health check failed")
			}
			continue
		}
		resp.Dependencies[hc.Name()] = "healthy"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
