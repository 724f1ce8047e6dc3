package service

import (
	"context"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// The interfaces below are the stores the engine consumes. The MySQL
// repositories in internal/repository implement them; tests use in-memory
// fakes. Lookups report a missing row with repository.ErrNotFound.

// ProfessionalDirectory resolves professionals of a tenant.
type ProfessionalDirectory interface {
	GetProfessional(ctx context.Context, tenantID, professionalID uint64) (*model.Professional, error)
}

// ServiceCatalog resolves catalog entries of a tenant.
type ServiceCatalog interface {
	GetService(ctx context.Context, tenantID, serviceID uint64) (*model.Service, error)
}

// ClientRegistry resolves clients for display.
type ClientRegistry interface {
	GetClient(ctx context.Context, tenantID, clientID uint64) (*model.Client, error)
}

// PolicyStore holds the single booking policy of each tenant.
type PolicyStore interface {
	GetPolicy(ctx context.Context, tenantID uint64) (*model.BookingPolicy, error)
	UpsertPolicy(ctx context.Context, p *model.BookingPolicy) error
}

// BusinessHoursReader is the read side used by availability.
type BusinessHoursReader interface {
	ListBusinessHours(ctx context.Context, tenantID uint64, weekday time.Weekday, activeOnly bool) ([]model.BusinessHours, error)
}

// ProfessionalHoursReader is the read side used by availability.
type ProfessionalHoursReader interface {
	ListProfessionalHours(ctx context.Context, tenantID, professionalID uint64, weekday time.Weekday, activeOnly bool) ([]model.ProfessionalHours, error)
}

// BusinessHoursStore is the full business hours store used by
// administration. ReplaceBusinessHoursDay deactivates every active row of
// the weekday and inserts rows, atomically for that one weekday.
type BusinessHoursStore interface {
	BusinessHoursReader
	ListAllBusinessHours(ctx context.Context, tenantID uint64) ([]model.BusinessHours, error)
	GetBusinessHours(ctx context.Context, tenantID, id uint64) (*model.BusinessHours, error)
	CreateBusinessHours(ctx context.Context, row *model.BusinessHours) error
	UpdateBusinessHours(ctx context.Context, row *model.BusinessHours) error
	ReplaceBusinessHoursDay(ctx context.Context, tenantID uint64, weekday time.Weekday, rows []model.BusinessHours) error
}

// ProfessionalHoursStore mirrors BusinessHoursStore for one professional.
type ProfessionalHoursStore interface {
	ProfessionalHoursReader
	ListAllProfessionalHours(ctx context.Context, tenantID, professionalID uint64) ([]model.ProfessionalHours, error)
	GetProfessionalHours(ctx context.Context, tenantID, id uint64) (*model.ProfessionalHours, error)
	CreateProfessionalHours(ctx context.Context, row *model.ProfessionalHours) error
	UpdateProfessionalHours(ctx context.Context, row *model.ProfessionalHours) error
	ReplaceProfessionalHoursDay(ctx context.Context, tenantID, professionalID uint64, weekday time.Weekday, rows []model.ProfessionalHours) error
}

// BookingLedger lists the bookings that occupy a professional's day:
// not cancelled and not soft-deleted.
type BookingLedger interface {
	ListActiveBookings(ctx context.Context, tenantID, professionalID uint64, date time.Time) ([]model.Booking, error)
}

// BookingStore is the write side of the ledger.
//
// CreateChecked must serialise writers of the same tenant, professional
// and date: it takes a lock scoped to that day, loads the day's active
// bookings, calls check with them and inserts b with its lines only when
// check returns nil, all in one transaction. Any error leaves nothing
// behind.
//
// TransitionStatus loads the booking under a row lock and asks next for
// the target status; when the target equals the current status nothing is
// written.
type BookingStore interface {
	BookingLedger
	CreateChecked(ctx context.Context, b *model.Booking, check func(existing []model.Booking) error) error
	GetBooking(ctx context.Context, tenantID, bookingID uint64) (*model.Booking, error)
	ListBookings(ctx context.Context, tenantID, professionalID uint64, date time.Time) ([]model.Booking, error)
	TransitionStatus(ctx context.Context, tenantID, bookingID uint64, next func(current *model.Booking) (model.BookingStatus, error)) (*model.Booking, error)
	SoftDelete(ctx context.Context, tenantID, bookingID uint64) error
}

// EventPublisher emits domain events. Failures never abort a booking.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
