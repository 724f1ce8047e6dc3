package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// CancelRequest cancels a booking. A non-internal caller must pass the
// ClientID of the session; it may only cancel its own bookings and must
// respect the tenant's cancellation notice.
type CancelRequest struct {
	TenantID  uint64
	BookingID uint64
	ClientID  *uint64
	Internal  bool
}

// BookingDetail is a booking with its client attached for display.
type BookingDetail struct {
	model.Booking
	Date   string        `json:"date"`
	Client *model.Client `json:"client,omitempty"`
}

// CancelBooking moves a booking to CANCELLED. Cancelling an already
// cancelled booking succeeds without writing; an ATTENDED booking cannot
// be cancelled.
func (w *BookingWriter) CancelBooking(ctx context.Context, req CancelRequest) (status model.BookingStatus, err error) {
	ctx, span := tracer.Start(ctx, "booking.cancel")
	span.SetAttributes(
		attribute.Int64("tenant.id", int64(req.TenantID)),
		attribute.Int64("booking.id", int64(req.BookingID)),
		attribute.Bool("caller.internal", req.Internal),
	)
	defer func() { endSpan(span, err) }()

	var policy *model.BookingPolicy
	if !req.Internal {
		if policy, err = w.policy(ctx, req.TenantID); err != nil {
			return "", err
		}
	}

	changed := false
	b, err := w.bookings.TransitionStatus(ctx, req.TenantID, req.BookingID, func(cur *model.Booking) (model.BookingStatus, error) {
		if !req.Internal && !ownedBy(cur, req.ClientID) {
			return "", fmt.Errorf("%w: booking %d", ErrUnknownReference, req.BookingID)
		}
		if cur.Status == model.StatusCancelled {
			return cur.Status, nil
		}
		if !cur.Status.CanTransition(model.StatusCancelled) {
			return "", fmt.Errorf("%w: %s booking cannot be cancelled", ErrInvalidTransition, cur.Status)
		}
		if policy != nil {
			start := cur.Start.On(cur.Date, w.calendar.loc())
			if err := checkCancelNotice(policy, start, w.calendar.now()); err != nil {
				return "", err
			}
		}
		changed = true
		return model.StatusCancelled, nil
	})
	if err != nil {
		return "", lookupErr(err, "booking", req.BookingID)
	}
	if changed {
		w.log.Info("booking cancelled",
			zap.Uint64("booking_id", b.ID),
			zap.Uint64("tenant_id", b.TenantID),
			zap.Bool("internal", req.Internal),
		)
		w.publish(ctx, queue.RoutingBookingCancelled, b)
	}
	return b.Status, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED. Confirming a
// confirmed booking is a no-op.
func (w *BookingWriter) ConfirmBooking(ctx context.Context, tenantID, bookingID uint64) (model.BookingStatus, error) {
	return w.advance(ctx, tenantID, bookingID, model.StatusConfirmed)
}

// MarkAttended records that the appointment took place.
func (w *BookingWriter) MarkAttended(ctx context.Context, tenantID, bookingID uint64) (model.BookingStatus, error) {
	return w.advance(ctx, tenantID, bookingID, model.StatusAttended)
}

func (w *BookingWriter) advance(ctx context.Context, tenantID, bookingID uint64, to model.BookingStatus) (model.BookingStatus, error) {
	b, err := w.bookings.TransitionStatus(ctx, tenantID, bookingID, func(cur *model.Booking) (model.BookingStatus, error) {
		if cur.Status == to {
			return to, nil
		}
		if !cur.Status.CanTransition(to) {
			return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, to)
		}
		return to, nil
	})
	if err != nil {
		return "", lookupErr(err, "booking", bookingID)
	}
	return b.Status, nil
}

// DeleteBooking soft-deletes a booking; it stops occupying its interval
// but stays in storage.
func (w *BookingWriter) DeleteBooking(ctx context.Context, tenantID, bookingID uint64) error {
	if err := w.bookings.SoftDelete(ctx, tenantID, bookingID); err != nil {
		return lookupErr(err, "booking", bookingID)
	}
	w.log.Info("booking deleted", zap.Uint64("booking_id", bookingID), zap.Uint64("tenant_id", tenantID))
	return nil
}

// GetBooking loads one booking. Non-internal callers only see their own.
// A client that can no longer be resolved is simply left off.
func (w *BookingWriter) GetBooking(ctx context.Context, tenantID, bookingID uint64, clientID *uint64, internal bool) (*BookingDetail, error) {
	b, err := w.bookings.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, lookupErr(err, "booking", bookingID)
	}
	if !internal && !ownedBy(b, clientID) {
		return nil, fmt.Errorf("%w: booking %d", ErrUnknownReference, bookingID)
	}
	d := &BookingDetail{Booking: *b, Date: b.Date.Format(interval.DateLayout)}
	if b.ClientID != nil && w.clients != nil {
		c, err := w.clients.GetClient(ctx, tenantID, *b.ClientID)
		switch {
		case err == nil:
			d.Client = c
		case errors.Is(err, repository.ErrNotFound):
		default:
			return nil, err
		}
	}
	return d, nil
}

// ListBookings returns every non-deleted booking of a professional on a
// date, cancelled ones included, ordered by start.
func (w *BookingWriter) ListBookings(ctx context.Context, tenantID, professionalID uint64, date time.Time) ([]BookingDetail, error) {
	list, err := w.bookings.ListBookings(ctx, tenantID, professionalID, interval.DateOf(date))
	if err != nil {
		return nil, err
	}
	out := make([]BookingDetail, 0, len(list))
	for _, b := range list {
		out = append(out, BookingDetail{Booking: b, Date: b.Date.Format(interval.DateLayout)})
	}
	return out, nil
}

func ownedBy(b *model.Booking, clientID *uint64) bool {
	return clientID != nil && b.ClientID != nil && *b.ClientID == *clientID
}
