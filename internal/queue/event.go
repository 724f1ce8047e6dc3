// Package queue defines the booking events exchanged over RabbitMQ, the
// publisher used by the booking writer and the consumer that keeps an
// audit log of them.
package queue

import (
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
)

// Routing keys on the booking exchange.
const (
	RoutingBookingCreated   = "booking.created"
	RoutingBookingCancelled = "booking.cancelled"
)

// BookingEvent is published whenever a booking is created or cancelled.
// It carries enough for downstream consumers (notifications, analytics)
// to act without reading the primary database.
type BookingEvent struct {
	Type                 string   `json:"type"`
	BookingID            uint64   `json:"booking_id"`
	TenantID             uint64   `json:"tenant_id"`
	ProfessionalID       uint64   `json:"professional_id"`
	ClientID             *uint64  `json:"client_id,omitempty"`
	Date                 string   `json:"date"`
	StartTime            string   `json:"start_time"`
	EndTime              string   `json:"end_time"`
	ServiceIDs           []uint64 `json:"service_ids"`
	TotalDurationMinutes int      `json:"total_duration_minutes"`
	TotalPriceCents      int64    `json:"total_price_cents"`
	Status               string   `json:"status"`
	OccurredAt           string   `json:"occurred_at"`
}

// NewBookingEvent snapshots b for publishing.
func NewBookingEvent(eventType string, b *model.Booking, at time.Time) BookingEvent {
	ids := make([]uint64, 0, len(b.Lines))
	for _, l := range b.Lines {
		ids = append(ids, l.ServiceID)
	}
	return BookingEvent{
		Type:                 eventType,
		BookingID:            b.ID,
		TenantID:             b.TenantID,
		ProfessionalID:       b.ProfessionalID,
		ClientID:             b.ClientID,
		Date:                 b.Date.Format(interval.DateLayout),
		StartTime:            b.Start.String(),
		EndTime:              b.End.String(),
		ServiceIDs:           ids,
		TotalDurationMinutes: b.TotalDurationMinutes,
		TotalPriceCents:      b.TotalPriceCents,
		Status:               string(b.Status),
		OccurredAt:           at.UTC().Format(time.RFC3339),
	}
}
