package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// ScheduleHandler lets owners and staff maintain business hours and
// per-professional hours.
type ScheduleHandler struct {
	Schedules ScheduleService
	Log       *zap.Logger
}

// NewScheduleHandler panics when the service is nil.
func NewScheduleHandler(svc ScheduleService, log *zap.Logger) *ScheduleHandler {
	if svc == nil {
		panic("nil service passed to NewScheduleHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleHandler{Schedules: svc, Log: log}
}

type hoursBody struct {
	Weekday   *int            `json:"weekday"`
	StartTime *interval.Clock `json:"start_time"`
	EndTime   *interval.Clock `json:"end_time"`
	// Active is only read on update; omitted means active.
	Active *bool `json:"active"`
}

// window validates the body fields shared by create and update.
func (b hoursBody) window() (time.Weekday, interval.Clock, interval.Clock, string) {
	wd, ok := parseWeekday(b.Weekday)
	if !ok {
		return 0, 0, 0, "weekday must be 0 (Sunday) to 6 (Saturday)"
	}
	if b.StartTime == nil || b.EndTime == nil {
		return 0, 0, 0, "start_time and end_time are required"
	}
	return wd, *b.StartTime, *b.EndTime, ""
}

func (b hoursBody) active() bool { return b.Active == nil || *b.Active }

type copyBody struct {
	SourceWeekday       *int  `json:"source_weekday"`
	DestinationWeekdays []int `json:"destination_weekdays"`
}

func (b copyBody) request(tenantID, professionalID uint64) (service.CopyRequest, string) {
	src, ok := parseWeekday(b.SourceWeekday)
	if !ok {
		return service.CopyRequest{}, "source_weekday must be 0 (Sunday) to 6 (Saturday)"
	}
	if len(b.DestinationWeekdays) == 0 {
		return service.CopyRequest{}, "destination_weekdays is required"
	}
	dst := make([]time.Weekday, 0, len(b.DestinationWeekdays))
	for i := range b.DestinationWeekdays {
		wd, ok := parseWeekday(&b.DestinationWeekdays[i])
		if !ok {
			return service.CopyRequest{}, "destination_weekdays must be 0 (Sunday) to 6 (Saturday)"
		}
		dst = append(dst, wd)
	}
	return service.CopyRequest{
		TenantID:       tenantID,
		ProfessionalID: professionalID,
		SourceWeekday:  src,
		Destinations:   dst,
	}, ""
}

// ---- Business hours ----

// ListBusinessHours handles GET /v1/staff/business-hours.
func (h *ScheduleHandler) ListBusinessHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	rows, err := h.Schedules.ListBusinessHours(c.Request().Context(), cl.TenantID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// CreateBusinessHours handles POST /v1/staff/business-hours.
func (h *ScheduleHandler) CreateBusinessHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var body hoursBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	wd, start, end, msg := body.window()
	if msg != "" {
		return badRequest(c, msg)
	}
	row, err := h.Schedules.CreateBusinessHours(c.Request().Context(), model.BusinessHours{
		TenantID: cl.TenantID, Weekday: wd, Start: start, End: end,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// UpdateBusinessHours handles PUT /v1/staff/business-hours/:id.
func (h *ScheduleHandler) UpdateBusinessHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var body hoursBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	wd, start, end, msg := body.window()
	if msg != "" {
		return badRequest(c, msg)
	}
	row, err := h.Schedules.UpdateBusinessHours(c.Request().Context(), model.BusinessHours{
		ID: id, TenantID: cl.TenantID, Weekday: wd, Start: start, End: end, Active: body.active(),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DeactivateBusinessHours handles DELETE /v1/staff/business-hours/:id.
// Rows are never removed, only switched off.
func (h *ScheduleHandler) DeactivateBusinessHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.Schedules.DeactivateBusinessHours(c.Request().Context(), cl.TenantID, id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CopyBusinessHours handles POST /v1/staff/business-hours/copy.
func (h *ScheduleHandler) CopyBusinessHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	return h.copy(c, cl.TenantID, 0)
}

// ---- Professional hours ----

// ListProfessionalHours handles GET
// /v1/staff/professionals/:professional_id/hours.
func (h *ScheduleHandler) ListProfessionalHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	proID, ok := parseID(c, "professional_id")
	if !ok {
		return badRequest(c, "invalid professional id")
	}
	rows, err := h.Schedules.ListProfessionalHours(c.Request().Context(), cl.TenantID, proID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// CreateProfessionalHours handles POST
// /v1/staff/professionals/:professional_id/hours.
func (h *ScheduleHandler) CreateProfessionalHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	proID, ok := parseID(c, "professional_id")
	if !ok {
		return badRequest(c, "invalid professional id")
	}
	var body hoursBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	wd, start, end, msg := body.window()
	if msg != "" {
		return badRequest(c, msg)
	}
	row, err := h.Schedules.CreateProfessionalHours(c.Request().Context(), model.ProfessionalHours{
		TenantID: cl.TenantID, ProfessionalID: proID, Weekday: wd, Start: start, End: end,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// UpdateProfessionalHours handles PUT /v1/staff/professional-hours/:id.
func (h *ScheduleHandler) UpdateProfessionalHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var body hoursBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	wd, start, end, msg := body.window()
	if msg != "" {
		return badRequest(c, msg)
	}
	row, err := h.Schedules.UpdateProfessionalHours(c.Request().Context(), model.ProfessionalHours{
		ID: id, TenantID: cl.TenantID, Weekday: wd, Start: start, End: end, Active: body.active(),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DeactivateProfessionalHours handles DELETE
// /v1/staff/professional-hours/:id.
func (h *ScheduleHandler) DeactivateProfessionalHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.Schedules.DeactivateProfessionalHours(c.Request().Context(), cl.TenantID, id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CopyProfessionalHours handles POST
// /v1/staff/professionals/:professional_id/hours/copy.
func (h *ScheduleHandler) CopyProfessionalHours(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	proID, ok := parseID(c, "professional_id")
	if !ok {
		return badRequest(c, "invalid professional id")
	}
	return h.copy(c, cl.TenantID, proID)
}

// copy answers 200 when every destination day was copied and 207 when
// some days failed; the body always carries the per-day outcome.
func (h *ScheduleHandler) copy(c echo.Context, tenantID, professionalID uint64) error {
	var body copyBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	req, msg := body.request(tenantID, professionalID)
	if msg != "" {
		return badRequest(c, msg)
	}
	days, err := h.Schedules.CopySchedule(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	status := http.StatusOK
	for _, d := range days {
		if d.Error != "" {
			status = http.StatusMultiStatus
			break
		}
	}
	return c.JSON(status, echo.Map{"days": days})
}
