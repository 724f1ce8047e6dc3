package model

import (
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
)

// BusinessHours is one operating window of a tenant on a weekday. Several
// rows on the same weekday represent split shifts (e.g. a lunch break).
//
// Fields:
//  ID        – primary key identifier.
//  TenantID  – owning tenant.
//  Weekday   – 0 (Sunday) through 6 (Saturday).
//  Start/End – half-open window, Start < End.
//  Active    – inactive rows are ignored by availability.
type BusinessHours struct {
	ID        uint64         `json:"id"`
	TenantID  uint64         `json:"tenant_id"`
	Weekday   time.Weekday   `json:"weekday"`
	Start     interval.Clock `json:"start_time"`
	End       interval.Clock `json:"end_time"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Window returns the row as a half-open interval.
func (b BusinessHours) Window() interval.Interval {
	return interval.Interval{Start: b.Start, End: b.End}
}

// ProfessionalHours overrides the business hours for one professional on a
// weekday. It is only consulted when the professional does not use the
// business hours.
type ProfessionalHours struct {
	ID             uint64         `json:"id"`
	TenantID       uint64         `json:"tenant_id"`
	ProfessionalID uint64         `json:"professional_id"`
	Weekday        time.Weekday   `json:"weekday"`
	Start          interval.Clock `json:"start_time"`
	End            interval.Clock `json:"end_time"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Window returns the row as a half-open interval.
func (p ProfessionalHours) Window() interval.Interval {
	return interval.Interval{Start: p.Start, End: p.End}
}
