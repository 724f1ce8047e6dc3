package service

import (
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
)

// Calendar supplies "now" and the zone in which calendar dates and times
// of day are interpreted. The zero value uses time.Now in UTC.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now().In(c.loc())
	}
	return c.Now().In(c.loc())
}

// today is the current calendar date in the calendar's zone.
func (c Calendar) today() time.Time {
	return interval.DateOf(c.now())
}

// checkBookingDay applies the day-level rules that bind non-internal
// callers: no past dates, same-day bookings only when allowed, nothing
// further than MaxAdvanceDays ahead.
func checkBookingDay(p *model.BookingPolicy, date, today time.Time) error {
	days := interval.DaysBetween(today, date)
	switch {
	case days < 0:
		return fmt.Errorf("%w: date %s is in the past", ErrPolicyViolation, date.Format(interval.DateLayout))
	case days == 0 && !p.SameDayAllowed:
		return fmt.Errorf("%w: same-day bookings are not allowed", ErrPolicyViolation)
	case days > p.MaxAdvanceDays:
		return fmt.Errorf("%w: bookings open at most %d days ahead", ErrPolicyViolation, p.MaxAdvanceDays)
	}
	return nil
}

// leadCutoff is the earliest instant a non-internal caller may book.
func leadCutoff(p *model.BookingPolicy, now time.Time) time.Time {
	return now.Add(time.Duration(p.MinLeadHours) * time.Hour)
}

// checkLeadTime rejects a start that falls inside the lead-time window.
func checkLeadTime(p *model.BookingPolicy, start, now time.Time) error {
	if start.Before(leadCutoff(p, now)) {
		return fmt.Errorf("%w: bookings require %d hours notice", ErrPolicyViolation, p.MinLeadHours)
	}
	return nil
}

// checkCancelNotice rejects a cancellation closer to the start than the
// policy allows.
func checkCancelNotice(p *model.BookingPolicy, start, now time.Time) error {
	if start.Sub(now) < time.Duration(p.MinCancelNoticeHours)*time.Hour {
		return fmt.Errorf("%w: cancellations require %d hours notice", ErrPolicyViolation, p.MinCancelNoticeHours)
	}
	return nil
}
