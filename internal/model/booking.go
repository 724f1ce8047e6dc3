package model

import (
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusAttended  BookingStatus = "ATTENDED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == StatusAttended || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAttended, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed. Statuses
// only move forward: PENDING may become anything, CONFIRMED may become
// ATTENDED or CANCELLED, ATTENDED and CANCELLED never change.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusAttended || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusAttended || next == StatusCancelled
	}
	return false
}

// Booking records one appointment of a professional. ProfessionalID and
// ClientID are weak references: removing those records never removes the
// booking.
//
// Fields:
//  ID                   – primary key identifier.
//  TenantID             – owning tenant.
//  ProfessionalID       – professional being booked.
//  ClientID             – client, nil for a walk-in.
//  Date                 – calendar date (midnight UTC).
//  Start/End            – half-open time of day; End is derived.
//  TotalDurationMinutes – sum of the captured line durations.
//  TotalPriceCents      – sum of the captured line prices.
//  Status               – lifecycle state.
//  DeletedAt            – soft-delete marker.
type Booking struct {
	ID                   uint64         `json:"id"`
	TenantID             uint64         `json:"tenant_id"`
	ProfessionalID       uint64         `json:"professional_id"`
	ClientID             *uint64        `json:"client_id,omitempty"`
	Date                 time.Time      `json:"-"`
	Start                interval.Clock `json:"start_time"`
	End                  interval.Clock `json:"end_time"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
	TotalPriceCents      int64          `json:"total_price_cents"`
	Status               BookingStatus  `json:"status"`
	Lines                []BookingLine  `json:"services"`
	DeletedAt            *time.Time     `json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Interval returns the booking's half-open occupied range.
func (b Booking) Interval() interval.Interval {
	return interval.Interval{Start: b.Start, End: b.End}
}

// Active reports whether the booking still occupies its interval.
func (b Booking) Active() bool {
	return b.Status != StatusCancelled && b.DeletedAt == nil
}

// BookingLine captures a requested service as it was priced when the
// booking was made; later catalog changes do not affect it.
type BookingLine struct {
	ServiceID       uint64 `json:"service_id"`
	ServiceName     string `json:"service_name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}
