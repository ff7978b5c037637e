package httpserver

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver/helpers"
	customMiddleware "github.com/nfaa/webapp/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	CookieName     string
	CookieSecure   bool
}

type ServerDeps struct {
	AuthService        ports.AuthService
	SessionStore       ports.SessionStore
	RateLimiterService ports.RateLimiterService
	// UserRepository serves business lookups; normally the cached decorator.
	UserRepository ports.UserRepository
	Clock          ports.Clock
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	authSvc        ports.AuthService
	userRepo       ports.UserRepository
	clock          ports.Clock
	cookie         *helpers.SessionCookie
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	cookie := helpers.NewSessionCookie(serverConfig.CookieName, serverConfig.CookieSecure)

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		authSvc:        deps.AuthService,
		userRepo:       deps.UserRepository,
		clock:          deps.Clock,
		cookie:         cookie,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.SessionStore,
			cookie,
			deps.RateLimiterService,
			deps.Clock,
			logger,
			GetMetrics(),
		),
	}
	e.HTTPErrorHandler = server.httpErrorHandler

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
