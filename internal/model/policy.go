package model

import "time"

// BookingPolicy is the per-tenant booking configuration. Exactly one row
// exists per tenant.
//
// Fields:
//  MinLeadHours         – public callers cannot book a slot starting sooner.
//  MaxAdvanceDays       – public callers cannot book further ahead.
//  SameDayAllowed       – whether public callers may book for today.
//  TurnIntervalMinutes  – buffer required after each booking; also the
//                         slot step. Zero means "step by service duration".
//  MinCancelNoticeHours – public callers cannot cancel closer to the start.
type BookingPolicy struct {
	TenantID             uint64    `json:"tenant_id"`
	MinLeadHours         int       `json:"min_lead_hours"`
	MaxAdvanceDays       int       `json:"max_advance_days"`
	SameDayAllowed       bool      `json:"same_day_allowed"`
	TurnIntervalMinutes  int       `json:"turn_interval_minutes"`
	MinCancelNoticeHours int       `json:"min_cancel_notice_hours"`
	UpdatedAt            time.Time `json:"updated_at"`
}
