package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// staffGroup returns /v1/staff guarded by JWT and the OWNER or STAFF role.
func staffGroup(e *echo.Echo, jwtSecret string) *echo.Group {
	return e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner, middleware.RoleStaff),
	)
}

// RegisterStaff registers schedule and policy administration.
func RegisterStaff(e *echo.Echo, s *handler.ScheduleHandler, p *handler.PolicyHandler, jwtSecret string) {
	g := staffGroup(e, jwtSecret)

	// ---- Business hours ----
	g.GET("/business-hours", s.ListBusinessHours)
	g.POST("/business-hours", s.CreateBusinessHours)
	g.POST("/business-hours/copy", s.CopyBusinessHours)
	g.PUT("/business-hours/:id", s.UpdateBusinessHours)
	g.DELETE("/business-hours/:id", s.DeactivateBusinessHours)

	// ---- Professional hours ----
	g.GET("/professionals/:professional_id/hours", s.ListProfessionalHours)
	g.POST("/professionals/:professional_id/hours", s.CreateProfessionalHours)
	g.POST("/professionals/:professional_id/hours/copy", s.CopyProfessionalHours)
	g.PUT("/professional-hours/:id", s.UpdateProfessionalHours)
	g.DELETE("/professional-hours/:id", s.DeactivateProfessionalHours)

	// ---- Policy ----
	g.GET("/policy", p.Get)
	g.PUT("/policy", p.Put)
}
