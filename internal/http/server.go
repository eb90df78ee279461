package http

import (
	"context"
	"errors"
	stdhttp "net/http"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"authz-service/internal/auth"
	"authz-service/internal/config"
	"authz-service/internal/http/handler"
	"authz-service/internal/http/middleware"
	"authz-service/pkg/metrics"
	"authz-service/pkg/profiling"
	"authz-service/pkg/rbac"
	"authz-service/pkg/rbac/echoadapter"
)

const requestBodyLimit = "1M"

type ServerDependencies struct {
	Config         *config.Config
	Engine         *rbac.Engine
	Resolver       handler.SubjectResolver
	Reloader       handler.Reloader
	Metrics        *metrics.Metrics
	AuthMiddleware *auth.Middleware
	Logger         slog.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every log line carries it.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(deps.Metrics.Middleware())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	// preAuth bounds credential checks per address; limiter bounds each
	// authenticated caller.
	preAuth := middleware.NewIPRateLimiter(deps.Config.RateLimit.AuthRPS, deps.Config.RateLimit.AuthBurst)
	limiter := middleware.NewRateLimiter(deps.Config.RateLimit.RPS, deps.Config.RateLimit.Burst)
	guard := echoadapter.NewGuard(deps.Engine, deps.Logger)

	healthHandler := handler.NewHealthHandler(deps.Engine)
	authorizeHandler := handler.NewAuthorizeHandler(deps.Engine, deps.Resolver, deps.Metrics, deps.Config.App.MaxQueryItems, deps.Logger)
	catalogHandler := handler.NewCatalogHandler(deps.Engine)
	meHandler := handler.NewMeHandler(deps.Engine)
	adminHandler := handler.NewAdminHandler(deps.Reloader, deps.Logger)

	e.GET("/health", healthHandler.Live)
	e.GET("/ready", healthHandler.Ready)

	v1 := e.Group("/v1")

	service := v1.Group("")
	service.Use(preAuth.Middleware())
	service.Use(deps.AuthMiddleware.RequireServiceKey())
	service.Use(limiter.Middleware())
	service.POST("/authorize/can", authorizeHandler.Can)
	service.POST("/authorize/any-permission", authorizeHandler.HasAnyPermission)
	service.POST("/authorize/all-permissions", authorizeHandler.HasAllPermissions)
	service.POST("/authorize/role", authorizeHandler.HasRole)
	service.POST("/authorize/any-role", authorizeHandler.HasAnyRole)
	service.POST("/subjects/grants", authorizeHandler.Grants)
	service.GET("/catalog/permissions", catalogHandler.Permissions)
	service.GET("/roles", catalogHandler.Roles)
	service.GET("/roles/:role/grants", catalogHandler.RoleGrants)

	jwtAPI := v1.Group("")
	jwtAPI.Use(preAuth.Middleware())
	jwtAPI.Use(deps.AuthMiddleware.RequireJWT())
	jwtAPI.Use(limiter.Middleware())
	jwtAPI.GET("/me", meHandler.Get)

	admin := e.Group("/admin")
	admin.Use(preAuth.Middleware())
	admin.Use(deps.AuthMiddleware.RequireJWT())
	admin.Use(guard.RequirePermission(rbac.PermSettingsSystemManage))
	admin.POST("/grant-table/reload", adminHandler.Reload)

	deps.Metrics.RegisterRoutes(e)
	if deps.Config.App.EnablePprof {
		profiling.RegisterPprofRoutes(e)
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

// Start blocks serving on address. A graceful shutdown is not an error.
func (s *Server) Start(address string) error {
	if err := s.echo.Start(address); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
