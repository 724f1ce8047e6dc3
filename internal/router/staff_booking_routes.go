package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// RegisterStaffBookings registers the staff view of availability and the
// booking lifecycle. Staff bookings bypass the policy rules but are
// subject to the same write-time collision check.
func RegisterStaffBookings(e *echo.Echo, a *handler.AvailabilityHandler, b *handler.BookingHandler, jwtSecret string) {
	g := staffGroup(e, jwtSecret)

	g.GET("/availability", a.ForCaller)
	g.GET("/bookings", b.List)
	g.POST("/bookings", b.Create)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/cancel", b.Cancel)
	g.POST("/bookings/:id/confirm", b.Confirm)
	g.POST("/bookings/:id/attend", b.Attend)
	g.DELETE("/bookings/:id", b.Delete)
}
