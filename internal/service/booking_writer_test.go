package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
)

func request(start string, services ...uint64) BookingRequest {
	return BookingRequest{
		TenantID: tenantID, ProfessionalID: proID, Date: monday,
		Start: interval.MustClock(start), ServiceIDs: services, Internal: true,
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture()
	f.book("10:30", "11:00")

	// Cut + Wash is 45 minutes: 10:00-10:45 meets 10:30-11:00.
	_, err := f.writer.CreateBooking(context.Background(), request("10:00", cutID, washID))
	if !errors.Is(err, ErrConflict) || !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("expected write conflict, got %v", err)
	}
	if len(f.events.published()) != 0 {
		t.Fatalf("no event expected for a rejected booking")
	}
}

func TestCreateBookingWithoutServicesTouchesNothing(t *testing.T) {
	f := newFixture()

	_, err := f.writer.CreateBooking(context.Background(), request("10:00"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if f.store.bookingOps != 0 {
		t.Fatalf("store was called %d times", f.store.bookingOps)
	}
}

func TestCreateBookingCapturesLinesAndTotals(t *testing.T) {
	f := newFixture()
	client := uint64(77)
	req := request("09:00", cutID, washID)
	req.ClientID = &client

	res, err := f.writer.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.StartTime != interval.MustClock("09:00") || res.EndTime != interval.MustClock("09:45") {
		t.Fatalf("unexpected interval %s-%s", res.StartTime, res.EndTime)
	}
	if res.TotalDurationMinutes != 45 || res.TotalPriceCents != 3300 {
		t.Fatalf("unexpected totals %+v", res)
	}
	if res.Status != model.StatusConfirmed {
		t.Fatalf("internal bookings start CONFIRMED, got %s", res.Status)
	}

	stored := f.store.booking(res.ID)
	if len(stored.Lines) != 2 || stored.Lines[0].ServiceName != "Cut" || stored.Lines[1].PriceCents != 800 {
		t.Fatalf("unexpected lines %+v", stored.Lines)
	}
	if stored.ClientID == nil || *stored.ClientID != 77 {
		t.Fatalf("client not stored")
	}

	// Later catalog changes must not touch the captured line.
	f.store.addService(model.Service{ID: cutID, TenantID: tenantID, Name: "Cut", DurationMinutes: 60, PriceCents: 9900})
	if again := f.store.booking(res.ID); again.Lines[0].PriceCents != 2500 {
		t.Fatalf("captured price changed to %d", again.Lines[0].PriceCents)
	}

	if got := f.events.published(); len(got) != 1 || got[0] != queue.RoutingBookingCreated {
		t.Fatalf("expected one booking.created event, got %v", got)
	}
}

func TestCreateBookingAllowsBackToBack(t *testing.T) {
	f := newFixture()
	f.book("10:00", "10:30")

	if _, err := f.writer.CreateBooking(context.Background(), request("09:30", cutID)); err != nil {
		t.Fatalf("booking ending at 10:00 should fit: %v", err)
	}
	if _, err := f.writer.CreateBooking(context.Background(), request("10:30", cutID)); err != nil {
		t.Fatalf("booking starting at 10:30 should fit: %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	cases := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{"unknown service", request("10:00", cutID, 999), ErrUnknownReference},
		{"unknown professional", func() BookingRequest { r := request("10:00", cutID); r.ProfessionalID = 999; return r }(), ErrUnknownReference},
		{"past midnight", request("23:30", beardID), ErrInvalidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			if _, err := f.writer.CreateBooking(context.Background(), tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if f.store.bookingOps != 0 {
				t.Fatalf("nothing should be persisted")
			}
		})
	}
}

func TestCreateBookingPublicCaller(t *testing.T) {
	f := newFixture()
	f.store.setPolicy(model.BookingPolicy{TenantID: tenantID, MaxAdvanceDays: 30, SameDayAllowed: false, TurnIntervalMinutes: 15, MinLeadHours: 2})

	req := request("10:00", cutID)
	req.Internal = false
	res, err := f.writer.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Status != model.StatusPending {
		t.Fatalf("public bookings start PENDING, got %s", res.Status)
	}

	f.setNow(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))
	req.Start = interval.MustClock("11:00")
	if _, err := f.writer.CreateBooking(context.Background(), req); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("same-day public booking: expected ErrPolicyViolation, got %v", err)
	}

	f.store.setPolicy(model.BookingPolicy{TenantID: tenantID, MaxAdvanceDays: 30, SameDayAllowed: true, MinLeadHours: 6})
	if _, err := f.writer.CreateBooking(context.Background(), req); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("inside lead time: expected ErrPolicyViolation, got %v", err)
	}

	req.Internal = true
	if _, err := f.writer.CreateBooking(context.Background(), req); err != nil {
		t.Fatalf("internal caller bypasses policy: %v", err)
	}
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	f := newFixture()
	const writers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.writer.CreateBooking(context.Background(), request("10:00", cutID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrWriteConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || conflicts != writers-1 {
		t.Fatalf("wins=%d conflicts=%d", wins, conflicts)
	}
}

func TestCreateBookingConcurrentNeverOverlaps(t *testing.T) {
	f := newFixture()
	starts := []string{"08:00", "08:15", "08:30", "08:45", "09:00", "09:10", "09:20", "09:30", "09:40", "10:00", "10:05", "10:30"}

	var wg sync.WaitGroup
	for round := 0; round < 3; round++ {
		for _, s := range starts {
			wg.Add(1)
			go func(s string) {
				defer wg.Done()
				_, _ = f.writer.CreateBooking(context.Background(), request(s, cutID))
			}(s)
		}
	}
	wg.Wait()

	active, _ := f.store.ListActiveBookings(context.Background(), tenantID, proID, monday)
	if len(active) == 0 {
		t.Fatalf("expected at least one booking")
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			if active[i].Interval().Overlaps(active[j].Interval()) {
				t.Fatalf("bookings %s and %s overlap", active[i].Interval(), active[j].Interval())
			}
		}
	}
}

// overlapStore simulates the database reporting lock contention.
type overlapStore struct {
	*memStore
}

func (s overlapStore) CreateChecked(context.Context, *model.Booking, func([]model.Booking) error) error {
	return errors.Join(repository.ErrOverlap, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
}

func TestCreateBookingMapsStoreOverlap(t *testing.T) {
	f := newFixture()
	w := NewBookingWriter(f.store, f.store, f.store, f.store, f.store, overlapStore{f.store}, f.store, nil, f.calendar, nil)

	_, err := w.CreateBooking(context.Background(), request("10:00", cutID))
	if !errors.Is(err, ErrWriteConflict) || !errors.Is(err, repository.ErrOverlap) {
		t.Fatalf("expected write conflict wrapping ErrOverlap, got %v", err)
	}
}

func TestCreateBookingSurvivesPublisherFailure(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker down")

	if _, err := f.writer.CreateBooking(context.Background(), request("10:00", cutID)); err != nil {
		t.Fatalf("publisher failure must not fail the booking: %v", err)
	}
}

func publicRequest(start string, services ...uint64) BookingRequest {
	r := request(start, services...)
	r.Internal = false
	return r
}

func TestCreateBookingPublicMustFitOperatingHours(t *testing.T) {
	cases := []struct {
		start string
		want  error
	}{
		{"03:00", ErrPolicyViolation}, // closed
		{"07:45", ErrPolicyViolation}, // starts before opening
		{"11:45", ErrPolicyViolation}, // runs past closing
		{"08:00", nil},
		{"11:30", nil}, // ends exactly at closing
	}
	for _, tc := range cases {
		t.Run(tc.start, func(t *testing.T) {
			f := newFixture()
			_, err := f.writer.CreateBooking(context.Background(), publicRequest(tc.start, cutID))
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if f.store.bookingOps != 0 {
				t.Fatalf("nothing should be persisted")
			}
		})
	}
}

func TestCreateBookingPublicOnClosedWeekday(t *testing.T) {
	f := newFixture()
	req := publicRequest("10:00", cutID)
	req.Date = monday.AddDate(0, 0, 1)

	if _, err := f.writer.CreateBooking(context.Background(), req); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	req.Internal = true
	if _, err := f.writer.CreateBooking(context.Background(), req); err != nil {
		t.Fatalf("staff may book outside the configured hours: %v", err)
	}
}

func TestCreateBookingPublicUsesProfessionalHours(t *testing.T) {
	f := newFixture()
	const solo = uint64(11)
	f.store.addProfessional(model.Professional{ID: solo, TenantID: tenantID, Name: "Bia", UsesBusinessHours: false})
	f.store.addProfessionalHours(tenantID, solo, time.Monday, "13:00", "15:00")

	req := publicRequest("09:00", cutID)
	req.ProfessionalID = solo
	if _, err := f.writer.CreateBooking(context.Background(), req); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("business hours do not apply to this professional, got %v", err)
	}
	req.Start = interval.MustClock("13:00")
	if _, err := f.writer.CreateBooking(context.Background(), req); err != nil {
		t.Fatalf("inside professional hours: %v", err)
	}
}

func TestCreateBookingPublicKeepsTurnBuffer(t *testing.T) {
	cases := []struct {
		start string
		ok    bool
	}{
		{"10:30", false}, // right after the booking, no buffer
		{"10:15", false},
		{"09:30", false}, // ends at 10:00, buffer runs into the booking
		{"10:45", true},
		{"09:15", true}, // ends 09:45, buffer ends 10:00
	}
	for _, tc := range cases {
		t.Run(tc.start, func(t *testing.T) {
			f := newFixture()
			f.book("10:00", "10:30")

			_, err := f.writer.CreateBooking(context.Background(), publicRequest(tc.start, cutID))
			if tc.ok && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrWriteConflict) {
				t.Fatalf("expected ErrWriteConflict, got %v", err)
			}
		})
	}
}

func TestCreateBookingPublicMatchesOfferedSlots(t *testing.T) {
	f := newFixture()
	f.book("10:00", "10:30")

	res, err := f.calc.ComputeAvailability(context.Background(), AvailabilityQuery{
		TenantID: tenantID, ProfessionalID: proID, ServiceID: cutID, Date: monday,
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	offered := map[interval.Clock]bool{}
	for _, s := range res.Slots {
		offered[s] = true
	}
	// Every quarter hour of the day: the writer accepts exactly what
	// availability offers.
	for c := interval.Clock(0); c < interval.MinutesPerDay; c += 15 {
		g := newFixture()
		g.book("10:00", "10:30")
		_, err := g.writer.CreateBooking(context.Background(), publicRequest(c.String(), cutID))
		if (err == nil) != offered[c] {
			t.Fatalf("%s: offered=%v, create err=%v", c, offered[c], err)
		}
	}
}

func TestCreateBookingStaffIgnoresTurnBuffer(t *testing.T) {
	f := newFixture()
	f.book("10:00", "10:30")

	if _, err := f.writer.CreateBooking(context.Background(), request("10:30", cutID)); err != nil {
		t.Fatalf("staff may book back to back: %v", err)
	}
	if _, err := f.writer.CreateBooking(context.Background(), request("10:15", cutID)); !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("plain overlap still conflicts: got %v", err)
	}
}
