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

// BookingRequest is a candidate booking. ClientID is nil for a walk-in.
type BookingRequest struct {
	TenantID       uint64
	ProfessionalID uint64
	ClientID       *uint64
	Date           time.Time
	Start          interval.Clock
	ServiceIDs     []uint64
	Internal       bool
}

// BookingResult is what the writer returns after a successful commit.
type BookingResult struct {
	ID                   uint64              `json:"id"`
	Date                 string              `json:"date"`
	StartTime            interval.Clock      `json:"start_time"`
	EndTime              interval.Clock      `json:"end_time"`
	TotalDurationMinutes int                 `json:"total_duration_minutes"`
	TotalPriceCents      int64               `json:"total_price_cents"`
	Status               model.BookingStatus `json:"status"`
}

// BookingWriter validates and persists bookings and drives their status
// lifecycle. Collisions are checked again at write time inside the store's
// day lock, independently of anything availability showed the caller.
// Non-internal callers are held to the same operating hours and turn
// buffer availability offers them.
type BookingWriter struct {
	professionals ProfessionalDirectory
	hours         operatingHours
	services      ServiceCatalog
	policies      PolicyStore
	bookings      BookingStore
	clients       ClientRegistry
	events        EventPublisher
	calendar      Calendar
	log           *zap.Logger
}

// NewBookingWriter wires the writer. events and clients may be nil.
func NewBookingWriter(
	professionals ProfessionalDirectory,
	businessHours BusinessHoursReader,
	professionalHours ProfessionalHoursReader,
	services ServiceCatalog,
	policies PolicyStore,
	bookings BookingStore,
	clients ClientRegistry,
	events EventPublisher,
	calendar Calendar,
	log *zap.Logger,
) *BookingWriter {
	if professionals == nil || businessHours == nil || professionalHours == nil || services == nil || policies == nil || bookings == nil {
		panic("nil store passed to NewBookingWriter")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingWriter{
		professionals: professionals,
		hours:         operatingHours{business: businessHours, professional: professionalHours},
		services:      services,
		policies:      policies,
		bookings:      bookings,
		clients:       clients,
		events:        events,
		calendar:      calendar,
		log:           log,
	}
}

// CreateBooking validates req and commits it when it collides with no
// active booking of the professional on that date.
func (w *BookingWriter) CreateBooking(ctx context.Context, req BookingRequest) (res *BookingResult, err error) {
	ctx, span := tracer.Start(ctx, "booking.create")
	span.SetAttributes(
		attribute.Int64("tenant.id", int64(req.TenantID)),
		attribute.Int64("professional.id", int64(req.ProfessionalID)),
		attribute.Int("services", len(req.ServiceIDs)),
	)
	defer func() { endSpan(span, err) }()

	if len(req.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrInvalidRange)
	}
	date := interval.DateOf(req.Date)

	lines := make([]model.BookingLine, 0, len(req.ServiceIDs))
	total := 0
	var price int64
	for _, id := range req.ServiceIDs {
		svc, err := w.services.GetService(ctx, req.TenantID, id)
		if err != nil {
			return nil, lookupErr(err, "service", id)
		}
		if svc.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: service %d has duration %d", ErrInvalidRange, svc.ID, svc.DurationMinutes)
		}
		total += svc.DurationMinutes
		price += svc.PriceCents
		lines = append(lines, model.BookingLine{
			ServiceID:       svc.ID,
			ServiceName:     svc.Name,
			DurationMinutes: svc.DurationMinutes,
			PriceCents:      svc.PriceCents,
		})
	}
	slot := interval.New(req.Start, total)
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: %s does not fit in the day", ErrInvalidRange, slot)
	}

	pro, err := w.professionals.GetProfessional(ctx, req.TenantID, req.ProfessionalID)
	if err != nil {
		return nil, lookupErr(err, "professional", req.ProfessionalID)
	}

	status := model.StatusConfirmed
	turn := 0
	if !req.Internal {
		status = model.StatusPending
		policy, err := w.policy(ctx, req.TenantID)
		if err != nil {
			return nil, err
		}
		now := w.calendar.now()
		if err := checkBookingDay(policy, date, interval.DateOf(now)); err != nil {
			return nil, err
		}
		if err := checkLeadTime(policy, req.Start.On(date, w.calendar.loc()), now); err != nil {
			return nil, err
		}
		windows, err := w.hours.windows(ctx, pro, date.Weekday())
		if err != nil {
			return nil, err
		}
		if !withinHours(slot, windows) {
			return nil, fmt.Errorf("%w: %s is outside operating hours on %s", ErrPolicyViolation, slot, date.Weekday())
		}
		if policy.TurnIntervalMinutes > 0 {
			turn = policy.TurnIntervalMinutes
		}
	}

	b := &model.Booking{
		TenantID:             req.TenantID,
		ProfessionalID:       req.ProfessionalID,
		ClientID:             req.ClientID,
		Date:                 date,
		Start:                slot.Start,
		End:                  slot.End,
		TotalDurationMinutes: total,
		TotalPriceCents:      price,
		Status:               status,
		Lines:                lines,
	}
	// Staff check plain overlap; everyone else also keeps the turn buffer
	// free behind both bookings.
	candidate := slot.ExtendEnd(turn)
	err = w.bookings.CreateChecked(ctx, b, func(existing []model.Booking) error {
		for _, e := range existing {
			if e.Active() && candidate.Overlaps(e.Interval().ExtendEnd(turn)) {
				return fmt.Errorf("%w: overlaps booking %d (%s)", ErrWriteConflict, e.ID, e.Interval())
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrOverlap) && !errors.Is(err, ErrWriteConflict) {
			err = fmt.Errorf("%w: %w", ErrWriteConflict, err)
		}
		return nil, err
	}

	w.log.Info("booking created",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("tenant_id", b.TenantID),
		zap.Uint64("professional_id", b.ProfessionalID),
		zap.String("date", date.Format(interval.DateLayout)),
		zap.Stringer("interval", slot),
	)
	w.publish(ctx, queue.RoutingBookingCreated, b)

	return &BookingResult{
		ID:                   b.ID,
		Date:                 date.Format(interval.DateLayout),
		StartTime:            b.Start,
		EndTime:              b.End,
		TotalDurationMinutes: b.TotalDurationMinutes,
		TotalPriceCents:      b.TotalPriceCents,
		Status:               b.Status,
	}, nil
}

func (w *BookingWriter) policy(ctx context.Context, tenantID uint64) (*model.BookingPolicy, error) {
	p, err := w.policies.GetPolicy(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPolicyNotConfigured
		}
		return nil, err
	}
	return p, nil
}

// publish emits a booking event; a broker failure is logged and dropped.
func (w *BookingWriter) publish(ctx context.Context, key string, b *model.Booking) {
	if w.events == nil {
		return
	}
	if err := w.events.Publish(ctx, key, queue.NewBookingEvent(key, b, time.Now().UTC())); err != nil {
		w.log.Warn("publish booking event failed",
			zap.String("routing_key", key),
			zap.Uint64("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
