package httpserver

import (
	"github.com/nfaa/webapp/internal/core/domain/user"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	// the limiter runs before any session lookup
	api := s.echo.Group("/api", s.middleware.RateLimit.Handler())

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)
	auth.GET("/me", s.me)

	users := api.Group("/users")
	users.GET("/:id", s.getUser, s.middleware.Session.RequireSession(user.RoleAnalyst, user.RoleAdmin))
}
