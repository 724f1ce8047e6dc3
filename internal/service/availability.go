package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// AvailabilityQuery asks which start times a professional can offer for a
// service on a date. Internal marks staff callers, who bypass the booking
// policy but never the collision rules.
type AvailabilityQuery struct {
	TenantID       uint64
	ProfessionalID uint64
	ServiceID      uint64
	Date           time.Time
	Internal       bool
}

// AvailabilityResult lists the offered start times in ascending order.
type AvailabilityResult struct {
	Date                   string           `json:"date"`
	ProfessionalID         uint64           `json:"professional_id"`
	Slots                  []interval.Clock `json:"slots"`
	ServiceDurationMinutes int              `json:"service_duration_minutes"`
	SlotCount              int              `json:"slot_count"`
}

// AvailabilityCalculator combines operating hours, the booking policy and
// the ledger into offered slots. It never writes and keeps no state
// between calls, so it is safe for concurrent use.
type AvailabilityCalculator struct {
	professionals     ProfessionalDirectory
	hours             operatingHours
	services          ServiceCatalog
	policies          PolicyStore
	ledger            BookingLedger
	calendar          Calendar
	log               *zap.Logger
}

// NewAvailabilityCalculator wires the calculator and panics if a store is
// missing.
func NewAvailabilityCalculator(
	professionals ProfessionalDirectory,
	businessHours BusinessHoursReader,
	professionalHours ProfessionalHoursReader,
	services ServiceCatalog,
	policies PolicyStore,
	ledger BookingLedger,
	calendar Calendar,
	log *zap.Logger,
) *AvailabilityCalculator {
	if professionals == nil || businessHours == nil || professionalHours == nil || services == nil || policies == nil || ledger == nil {
		panic("nil store passed to NewAvailabilityCalculator")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityCalculator{
		professionals:     professionals,
		hours:             operatingHours{business: businessHours, professional: professionalHours},
		services:          services,
		policies:          policies,
		ledger:            ledger,
		calendar:          calendar,
		log:               log,
	}
}

// ComputeAvailability returns the slots a professional can offer for a
// service on q.Date.
func (a *AvailabilityCalculator) ComputeAvailability(ctx context.Context, q AvailabilityQuery) (res *AvailabilityResult, err error) {
	ctx, span := tracer.Start(ctx, "availability.compute")
	span.SetAttributes(
		attribute.Int64("tenant.id", int64(q.TenantID)),
		attribute.Int64("professional.id", int64(q.ProfessionalID)),
		attribute.Bool("caller.internal", q.Internal),
	)
	defer func() { endSpan(span, err) }()

	date := interval.DateOf(q.Date)

	pro, err := a.professionals.GetProfessional(ctx, q.TenantID, q.ProfessionalID)
	if err != nil {
		return nil, lookupErr(err, "professional", q.ProfessionalID)
	}

	windows, err := a.hours.windows(ctx, pro, date.Weekday())
	if err != nil {
		return nil, err
	}

	svc, err := a.services.GetService(ctx, q.TenantID, q.ServiceID)
	if err != nil {
		return nil, lookupErr(err, "service", q.ServiceID)
	}
	if svc.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service %d has duration %d", ErrInvalidRange, svc.ID, svc.DurationMinutes)
	}

	policy, err := a.policies.GetPolicy(ctx, q.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPolicyNotConfigured
		}
		return nil, err
	}

	notBefore := time.Time{}
	if !q.Internal {
		now := a.calendar.now()
		if err := checkBookingDay(policy, date, interval.DateOf(now)); err != nil {
			return nil, err
		}
		notBefore = leadCutoff(policy, now)
	}

	booked, err := a.ledger.ListActiveBookings(ctx, q.TenantID, q.ProfessionalID, date)
	if err != nil {
		return nil, err
	}
	occupied := make([]interval.Interval, 0, len(booked))
	for _, b := range booked {
		occupied = append(occupied, b.Interval())
	}

	slots := generateSlots(windows, svc.DurationMinutes, policy.TurnIntervalMinutes, occupied)
	if !notBefore.IsZero() {
		kept := slots[:0]
		for _, s := range slots {
			if !s.On(date, a.calendar.loc()).Before(notBefore) {
				kept = append(kept, s)
			}
		}
		slots = kept
	}

	a.log.Debug("availability computed",
		zap.Uint64("tenant_id", q.TenantID),
		zap.Uint64("professional_id", q.ProfessionalID),
		zap.String("date", date.Format(interval.DateLayout)),
		zap.Int("windows", len(windows)),
		zap.Int("occupied", len(occupied)),
		zap.Int("slots", len(slots)),
	)

	return &AvailabilityResult{
		Date:                   date.Format(interval.DateLayout),
		ProfessionalID:         q.ProfessionalID,
		Slots:                  slots,
		ServiceDurationMinutes: svc.DurationMinutes,
		SlotCount:              len(slots),
	}, nil
}

// generateSlots steps through every window and keeps the candidates that
// do not collide with an occupied range. The step is the turn interval,
// or the service duration when no turn interval is set. Both the
// candidate and each occupied range carry the turn buffer behind them, so
// a candidate ending exactly where a booking starts survives only when the
// turn interval is zero. The result is ascending and de-duplicated across
// windows.
func generateSlots(windows []interval.Interval, duration, turn int, occupied []interval.Interval) []interval.Clock {
	if duration <= 0 {
		return nil
	}
	if turn < 0 {
		turn = 0
	}
	step := turn
	if step == 0 {
		step = duration
	}
	blocked := make([]interval.Interval, 0, len(occupied))
	for _, o := range occupied {
		blocked = append(blocked, o.ExtendEnd(turn))
	}

	slots := make([]interval.Clock, 0)
	for _, w := range windows {
		if !w.Valid() {
			continue
		}
		for s := w.Start; s.Add(duration) <= w.End; s = s.Add(step) {
			candidate := interval.New(s, duration).ExtendEnd(turn)
			if interval.AnyOverlap(candidate, blocked) {
				continue
			}
			slots = append(slots, s)
		}
	}
	return interval.SortedUnique(slots)
}

// lookupErr maps a missing row onto ErrUnknownReference.
func lookupErr(err error, kind string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrUnknownReference, kind, id)
	}
	return err
}
