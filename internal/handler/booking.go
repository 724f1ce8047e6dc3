package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// BookingHandler exposes booking creation and the status lifecycle. The
// same handlers serve customers and staff; the session decides whether
// policy rules and ownership checks apply.
type BookingHandler struct {
	Bookings BookingService
	Log      *zap.Logger
}

// NewBookingHandler panics when the service is nil.
func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Bookings: svc, Log: log}
}

type createBookingBody struct {
	ProfessionalID uint64          `json:"professional_id"`
	Date           string          `json:"date"`
	StartTime      *interval.Clock `json:"start_time"`
	ServiceIDs     []uint64        `json:"service_ids"`
	// ClientID is honoured for staff only; customers book for the client
	// linked to their session. Omit for a walk-in.
	ClientID *uint64 `json:"client_id"`
}

// Create handles POST /v1/bookings and POST /v1/staff/bookings. It returns
// 201 with the committed booking, or 409 with code "slot_taken" when the
// slot was taken between the availability query and the write.
func (h *BookingHandler) Create(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var body createBookingBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.ProfessionalID == 0 {
		return badRequest(c, "professional_id is required")
	}
	if body.StartTime == nil {
		return badRequest(c, "start_time is required")
	}
	if len(body.ServiceIDs) == 0 {
		return badRequest(c, "service_ids is required")
	}
	date, err := interval.ParseDate(body.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	clientID := body.ClientID
	if !cl.Internal() {
		if cl.ClientID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "session has no client profile"})
		}
		clientID = cl.ClientID
	}

	res, err := h.Bookings.CreateBooking(c.Request().Context(), service.BookingRequest{
		TenantID:       cl.TenantID,
		ProfessionalID: body.ProfessionalID,
		ClientID:       clientID,
		Date:           date,
		Start:          *body.StartTime,
		ServiceIDs:     body.ServiceIDs,
		Internal:       cl.Internal(),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/bookings/:id. Customers only see their own
// bookings; anything else is reported as not found.
func (h *BookingHandler) Get(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	d, err := h.Bookings.GetBooking(c.Request().Context(), cl.TenantID, id, cl.ClientID, cl.Internal())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// List handles GET /v1/staff/bookings?professional_id=&date=.
func (h *BookingHandler) List(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	proID, ok := queryID(c, "professional_id")
	if !ok {
		return badRequest(c, "professional_id is required")
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	list, err := h.Bookings.ListBookings(c.Request().Context(), cl.TenantID, proID, date)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list, "count": len(list)})
}

// Cancel handles DELETE /v1/bookings/:id and POST
// /v1/staff/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	status, err := h.Bookings.CancelBooking(c.Request().Context(), service.CancelRequest{
		TenantID:  cl.TenantID,
		BookingID: id,
		ClientID:  cl.ClientID,
		Internal:  cl.Internal(),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return statusReply(c, id, status)
}

// Confirm handles POST /v1/staff/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.advance(c, h.Bookings.ConfirmBooking)
}

// Attend handles POST /v1/staff/bookings/:id/attend.
func (h *BookingHandler) Attend(c echo.Context) error {
	return h.advance(c, h.Bookings.MarkAttended)
}

func (h *BookingHandler) advance(c echo.Context, fn func(ctx context.Context, tenantID, bookingID uint64) (model.BookingStatus, error)) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	status, err := fn(c.Request().Context(), cl.TenantID, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return statusReply(c, id, status)
}

// Delete handles DELETE /v1/staff/bookings/:id. The row is soft-deleted
// and no longer blocks its slot.
func (h *BookingHandler) Delete(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	if err := h.Bookings.DeleteBooking(c.Request().Context(), cl.TenantID, id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func statusReply(c echo.Context, id uint64, status model.BookingStatus) error {
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}
