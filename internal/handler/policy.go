package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/model"
)

// PolicyHandler reads and replaces the tenant's booking policy.
type PolicyHandler struct {
	Policies PolicyService
	Log      *zap.Logger
}

func NewPolicyHandler(svc PolicyService, log *zap.Logger) *PolicyHandler {
	if svc == nil {
		panic("nil service passed to NewPolicyHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PolicyHandler{Policies: svc, Log: log}
}

// Get handles GET /v1/staff/policy. A tenant without a policy gets 422.
func (h *PolicyHandler) Get(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	pol, err := h.Policies.GetPolicy(c.Request().Context(), cl.TenantID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pol)
}

// Put handles PUT /v1/staff/policy. The body replaces every field.
func (h *PolicyHandler) Put(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var body struct {
		MinLeadHours         int  `json:"min_lead_hours"`
		MaxAdvanceDays       int  `json:"max_advance_days"`
		SameDayAllowed       bool `json:"same_day_allowed"`
		TurnIntervalMinutes  int  `json:"turn_interval_minutes"`
		MinCancelNoticeHours int  `json:"min_cancel_notice_hours"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	pol, err := h.Policies.SavePolicy(c.Request().Context(), model.BookingPolicy{
		TenantID:             cl.TenantID,
		MinLeadHours:         body.MinLeadHours,
		MaxAdvanceDays:       body.MaxAdvanceDays,
		SameDayAllowed:       body.SameDayAllowed,
		TurnIntervalMinutes:  body.TurnIntervalMinutes,
		MinCancelNoticeHours: body.MinCancelNoticeHours,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pol)
}
