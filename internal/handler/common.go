package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// The handlers depend on these narrow views of the service layer so they
// can be exercised without a database.

type AvailabilityService interface {
	ComputeAvailability(ctx context.Context, q service.AvailabilityQuery) (*service.AvailabilityResult, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, req service.BookingRequest) (*service.BookingResult, error)
	CancelBooking(ctx context.Context, req service.CancelRequest) (model.BookingStatus, error)
	ConfirmBooking(ctx context.Context, tenantID, bookingID uint64) (model.BookingStatus, error)
	MarkAttended(ctx context.Context, tenantID, bookingID uint64) (model.BookingStatus, error)
	DeleteBooking(ctx context.Context, tenantID, bookingID uint64) error
	GetBooking(ctx context.Context, tenantID, bookingID uint64, clientID *uint64, internal bool) (*service.BookingDetail, error)
	ListBookings(ctx context.Context, tenantID, professionalID uint64, date time.Time) ([]service.BookingDetail, error)
}

type ScheduleService interface {
	ListBusinessHours(ctx context.Context, tenantID uint64) ([]model.BusinessHours, error)
	CreateBusinessHours(ctx context.Context, row model.BusinessHours) (*model.BusinessHours, error)
	UpdateBusinessHours(ctx context.Context, row model.BusinessHours) (*model.BusinessHours, error)
	DeactivateBusinessHours(ctx context.Context, tenantID, id uint64) error
	ListProfessionalHours(ctx context.Context, tenantID, professionalID uint64) ([]model.ProfessionalHours, error)
	CreateProfessionalHours(ctx context.Context, row model.ProfessionalHours) (*model.ProfessionalHours, error)
	UpdateProfessionalHours(ctx context.Context, row model.ProfessionalHours) (*model.ProfessionalHours, error)
	DeactivateProfessionalHours(ctx context.Context, tenantID, id uint64) error
	CopySchedule(ctx context.Context, req service.CopyRequest) ([]service.DayCopyResult, error)
}

type PolicyService interface {
	GetPolicy(ctx context.Context, tenantID uint64) (*model.BookingPolicy, error)
	SavePolicy(ctx context.Context, pol model.BookingPolicy) (*model.BookingPolicy, error)
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognised is logged and reported as 500 without detail.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownReference):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotConfigured), errors.Is(err, service.ErrPolicyViolation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrWriteConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "slot_taken"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	log.Error("unhandled error",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// caller returns the authenticated session. Routes behind JWTAuth always
// have one; a missing caller means the route was mounted without it.
func caller(c echo.Context) (middleware.Caller, bool) {
	return middleware.CallerFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID reads a positive integer query parameter.
func queryID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return id, err == nil && id > 0
}

// queryDate reads a YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (time.Time, bool) {
	d, err := interval.ParseDate(c.QueryParam(name))
	return d, err == nil
}

// parseWeekday accepts 0..6 with Sunday as 0.
func parseWeekday(n *int) (time.Weekday, bool) {
	if n == nil || *n < 0 || *n > 6 {
		return 0, false
	}
	return time.Weekday(*n), true
}
