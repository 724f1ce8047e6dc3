package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterDev mounts the development token endpoint. The caller decides
// whether the environment allows it.
func RegisterDev(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/v1/dev/token", a.DevToken)
}

// RegisterPublic registers the anonymous availability endpoint. mw wraps
// it in order; the server passes the rate limiter and the response cache.
func RegisterPublic(e *echo.Echo, a *handler.AvailabilityHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/v1/public/tenants/:tenant_id/availability", a.Public, mw...)
}
