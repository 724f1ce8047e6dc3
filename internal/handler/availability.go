package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/service"
)

// AvailabilityHandler serves slot queries for anonymous visitors,
// customers and staff. Only staff bypass the booking policy.
type AvailabilityHandler struct {
	Availability AvailabilityService
	Log          *zap.Logger
}

// NewAvailabilityHandler panics when the service is nil.
func NewAvailabilityHandler(svc AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	if svc == nil {
		panic("nil service passed to NewAvailabilityHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityHandler{Availability: svc, Log: log}
}

// Public handles GET /v1/public/tenants/:tenant_id/availability. The
// tenant comes from the path because there is no session.
func (h *AvailabilityHandler) Public(c echo.Context) error {
	tenantID, ok := parseID(c, "tenant_id")
	if !ok {
		return badRequest(c, "invalid tenant id")
	}
	return h.compute(c, tenantID, false)
}

// ForCaller handles GET /v1/availability and GET /v1/staff/availability.
// The tenant and the policy bypass come from the session.
func (h *AvailabilityHandler) ForCaller(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	return h.compute(c, cl.TenantID, cl.Internal())
}

func (h *AvailabilityHandler) compute(c echo.Context, tenantID uint64, internal bool) error {
	proID, ok := queryID(c, "professional_id")
	if !ok {
		return badRequest(c, "professional_id is required")
	}
	svcID, ok := queryID(c, "service_id")
	if !ok {
		return badRequest(c, "service_id is required")
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	res, err := h.Availability.ComputeAvailability(c.Request().Context(), service.AvailabilityQuery{
		TenantID:       tenantID,
		ProfessionalID: proID,
		ServiceID:      svcID,
		Date:           date,
		Internal:       internal,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}
