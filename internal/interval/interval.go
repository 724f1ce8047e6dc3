// Package interval holds the time-of-day arithmetic shared by the
// availability calculator, the booking writer and schedule validation.
// All ranges are half-open: [Start, End).
package interval

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout for calendar dates.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds every Clock value; 24:00 is allowed as an end.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned when a time-of-day string cannot be parsed.
var ErrInvalidClock = errors.New("invalid time of day")

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// ParseClock accepts "HH:MM" or "HH:MM:SS" (the MySQL TIME rendering).
// Seconds must be zero; "24:00" is accepted so a window may close at
// midnight.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec != 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}
	if h < 0 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	c := Clock(h*60 + m)
	if c > MinutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return c, nil
}

// MustClock is ParseClock for literals; it panics on malformed input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// SQL renders the clock as a MySQL TIME literal.
func (c Clock) SQL() string {
	return c.String() + ":00"
}

// Add shifts the clock by the given number of minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// On returns the absolute instant of this time of day on the given date
// in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, loc).Add(time.Duration(c) * time.Minute)
}

// MarshalJSON encodes the clock as "HH:MM".
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON decodes "HH:MM" or "HH:MM:SS".
func (c *Clock) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidClock, string(b))
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Interval is a half-open range of the day.
type Interval struct {
	Start Clock
	End   Clock
}

// New builds an interval from a start and a length in minutes.
func New(start Clock, minutes int) Interval {
	return Interval{Start: start, End: start.Add(minutes)}
}

// Valid reports whether Start < End and both lie inside the day.
func (i Interval) Valid() bool {
	return i.Start >= 0 && i.Start < i.End && i.End <= MinutesPerDay
}

// Minutes is the length of the interval.
func (i Interval) Minutes() int { return int(i.End - i.Start) }

// Overlaps reports whether [a,b) and [c,d) intersect: a < d && c < b.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

// ExtendEnd returns the interval with its end pushed out by minutes. It is
// used to apply the turn-interval buffer behind an occupied range.
func (i Interval) ExtendEnd(minutes int) Interval {
	return Interval{Start: i.Start, End: i.End.Add(minutes)}
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// AnyOverlap reports whether candidate intersects any of the given ranges.
func AnyOverlap(candidate Interval, occupied []Interval) bool {
	for _, o := range occupied {
		if candidate.Overlaps(o) {
			return true
		}
	}
	return false
}

// SortedUnique sorts clocks ascending and drops duplicates in place.
func SortedUnique(cs []Clock) []Clock {
	if len(cs) == 0 {
		return cs
	}
	sort.Slice(cs, func(a, b int) bool { return cs[a] < cs[b] })
	out := cs[:1]
	for _, c := range cs[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

// ParseDate parses a "2006-01-02" calendar date to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateOf truncates an instant to its calendar date (midnight UTC), read in
// the instant's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares the calendar dates of two instants.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween is the number of calendar days from a to b (negative when b
// precedes a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
