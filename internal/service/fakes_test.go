package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// memStore implements every store port in memory. CreateChecked holds the
// mutex across check and insert, which gives the same serialisation as
// the MySQL day lock.
type memStore struct {
	mu            sync.Mutex
	nextID        uint64
	professionals map[uint64]model.Professional
	services      map[uint64]model.Service
	clients       map[uint64]model.Client
	policies      map[uint64]model.BookingPolicy
	business      []model.BusinessHours
	profHours     []model.ProfessionalHours
	bookings      []model.Booking

	failReplace map[time.Weekday]error
	bookingOps  int
}

func newMemStore() *memStore {
	return &memStore{
		nextID:        100,
		professionals: map[uint64]model.Professional{},
		services:      map[uint64]model.Service{},
		clients:       map[uint64]model.Client{},
		policies:      map[uint64]model.BookingPolicy{},
		failReplace:   map[time.Weekday]error{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addProfessional(p model.Professional) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Active = true
	m.professionals[p.ID] = p
}

func (m *memStore) addService(s model.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Active = true
	m.services[s.ID] = s
}

func (m *memStore) addClient(c model.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
}

func (m *memStore) setPolicy(p model.BookingPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.TenantID] = p
}

func (m *memStore) addBusinessHours(tenantID uint64, wd time.Weekday, start, end string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := model.BusinessHours{ID: m.id(), TenantID: tenantID, Weekday: wd, Start: interval.MustClock(start), End: interval.MustClock(end), Active: true}
	m.business = append(m.business, row)
	return row.ID
}

func (m *memStore) addProfessionalHours(tenantID, professionalID uint64, wd time.Weekday, start, end string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := model.ProfessionalHours{ID: m.id(), TenantID: tenantID, ProfessionalID: professionalID, Weekday: wd, Start: interval.MustClock(start), End: interval.MustClock(end), Active: true}
	m.profHours = append(m.profHours, row)
	return row.ID
}

func (m *memStore) addBooking(b model.Booking) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.id()
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
	b.TotalDurationMinutes = b.Interval().Minutes()
	m.bookings = append(m.bookings, b)
	return b.ID
}

func (m *memStore) booking(id uint64) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			return b
		}
	}
	return model.Booking{}
}

// ---- catalog ----

func (m *memStore) GetProfessional(_ context.Context, tenantID, id uint64) (*model.Professional, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.professionals[id]
	if !ok || p.TenantID != tenantID || !p.Active {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) GetService(_ context.Context, tenantID, id uint64) (*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok || s.TenantID != tenantID || !s.Active {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) GetClient(_ context.Context, tenantID, id uint64) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

// ---- policy ----

func (m *memStore) GetPolicy(_ context.Context, tenantID uint64) (*model.BookingPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.policies[tenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) UpsertPolicy(_ context.Context, p *model.BookingPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	m.policies[p.TenantID] = *p
	return nil
}

// ---- business hours ----

func (m *memStore) ListBusinessHours(_ context.Context, tenantID uint64, wd time.Weekday, activeOnly bool) ([]model.BusinessHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BusinessHours
	for _, r := range m.business {
		if r.TenantID == tenantID && r.Weekday == wd && (!activeOnly || r.Active) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memStore) ListAllBusinessHours(_ context.Context, tenantID uint64) ([]model.BusinessHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BusinessHours
	for _, r := range m.business {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetBusinessHours(_ context.Context, tenantID, id uint64) (*model.BusinessHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.business {
		if r.ID == id && r.TenantID == tenantID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateBusinessHours(_ context.Context, row *model.BusinessHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.business = append(m.business, *row)
	return nil
}

func (m *memStore) UpdateBusinessHours(_ context.Context, row *model.BusinessHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.business {
		if r.ID == row.ID && r.TenantID == row.TenantID {
			m.business[i] = *row
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) ReplaceBusinessHoursDay(_ context.Context, tenantID uint64, wd time.Weekday, rows []model.BusinessHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failReplace[wd]; err != nil {
		return err
	}
	for i, r := range m.business {
		if r.TenantID == tenantID && r.Weekday == wd && r.Active {
			m.business[i].Active = false
		}
	}
	for _, r := range rows {
		r.ID = m.id()
		m.business = append(m.business, r)
	}
	return nil
}

// ---- professional hours ----

func (m *memStore) ListProfessionalHours(_ context.Context, tenantID, professionalID uint64, wd time.Weekday, activeOnly bool) ([]model.ProfessionalHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProfessionalHours
	for _, r := range m.profHours {
		if r.TenantID == tenantID && r.ProfessionalID == professionalID && r.Weekday == wd && (!activeOnly || r.Active) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memStore) ListAllProfessionalHours(_ context.Context, tenantID, professionalID uint64) ([]model.ProfessionalHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProfessionalHours
	for _, r := range m.profHours {
		if r.TenantID == tenantID && r.ProfessionalID == professionalID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetProfessionalHours(_ context.Context, tenantID, id uint64) (*model.ProfessionalHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.profHours {
		if r.ID == id && r.TenantID == tenantID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateProfessionalHours(_ context.Context, row *model.ProfessionalHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.profHours = append(m.profHours, *row)
	return nil
}

func (m *memStore) UpdateProfessionalHours(_ context.Context, row *model.ProfessionalHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.profHours {
		if r.ID == row.ID && r.TenantID == row.TenantID {
			m.profHours[i] = *row
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) ReplaceProfessionalHoursDay(_ context.Context, tenantID, professionalID uint64, wd time.Weekday, rows []model.ProfessionalHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failReplace[wd]; err != nil {
		return err
	}
	for i, r := range m.profHours {
		if r.TenantID == tenantID && r.ProfessionalID == professionalID && r.Weekday == wd && r.Active {
			m.profHours[i].Active = false
		}
	}
	for _, r := range rows {
		r.ID = m.id()
		m.profHours = append(m.profHours, r)
	}
	return nil
}

// ---- bookings ----

func (m *memStore) activeLocked(tenantID, professionalID uint64, date time.Time) []model.Booking {
	var out []model.Booking
	for _, b := range m.bookings {
		if b.TenantID == tenantID && b.ProfessionalID == professionalID && interval.SameDate(b.Date, date) && b.Active() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func (m *memStore) ListActiveBookings(_ context.Context, tenantID, professionalID uint64, date time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLocked(tenantID, professionalID, date), nil
}

func (m *memStore) CreateChecked(_ context.Context, b *model.Booking, check func([]model.Booking) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookingOps++
	if err := check(m.activeLocked(b.TenantID, b.ProfessionalID, b.Date)); err != nil {
		return err
	}
	b.ID = m.id()
	b.CreatedAt = time.Now().UTC()
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *memStore) GetBooking(_ context.Context, tenantID, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id && b.TenantID == tenantID && b.DeletedAt == nil {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListBookings(_ context.Context, tenantID, professionalID uint64, date time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.TenantID == tenantID && b.ProfessionalID == professionalID && interval.SameDate(b.Date, date) && b.DeletedAt == nil {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memStore) TransitionStatus(_ context.Context, tenantID, id uint64, next func(*model.Booking) (model.BookingStatus, error)) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookingOps++
	for i, b := range m.bookings {
		if b.ID != id || b.TenantID != tenantID || b.DeletedAt != nil {
			continue
		}
		cur := b
		target, err := next(&cur)
		if err != nil {
			return nil, err
		}
		m.bookings[i].Status = target
		out := m.bookings[i]
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) SoftDelete(_ context.Context, tenantID, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.bookings {
		if b.ID == id && b.TenantID == tenantID && b.DeletedAt == nil {
			now := time.Now().UTC()
			m.bookings[i].DeletedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

// recordingPublisher collects published routing keys.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// ---- fixture ----

const (
	tenantID = uint64(1)
	proID    = uint64(10)
	cutID    = uint64(20)
	washID   = uint64(21)
	beardID  = uint64(22)
)

// monday is a Monday; the fixture's "now" is the day before at 08:00 UTC.
var (
	monday  = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	fixedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
)

type fixture struct {
	store     *memStore
	events    *recordingPublisher
	calendar  Calendar
	calc      *AvailabilityCalculator
	writer    *BookingWriter
	schedules *ScheduleAdmin
}

// newFixture builds a tenant with one professional on business hours
// Mon 08:00-12:00, services of 30/15/45 minutes and a permissive policy
// with a 15 minute turn interval.
func newFixture() *fixture {
	st := newMemStore()
	st.addProfessional(model.Professional{ID: proID, TenantID: tenantID, Name: "Ana", UsesBusinessHours: true})
	st.addService(model.Service{ID: cutID, TenantID: tenantID, Name: "Cut", DurationMinutes: 30, PriceCents: 2500})
	st.addService(model.Service{ID: washID, TenantID: tenantID, Name: "Wash", DurationMinutes: 15, PriceCents: 800})
	st.addService(model.Service{ID: beardID, TenantID: tenantID, Name: "Beard", DurationMinutes: 45, PriceCents: 1500})
	st.addBusinessHours(tenantID, time.Monday, "08:00", "12:00")
	st.setPolicy(model.BookingPolicy{TenantID: tenantID, MaxAdvanceDays: 30, SameDayAllowed: true, TurnIntervalMinutes: 15})

	f := &fixture{store: st, events: &recordingPublisher{}}
	f.calendar = Calendar{Location: time.UTC, Now: func() time.Time { return fixedAt }}
	f.calc = NewAvailabilityCalculator(st, st, st, st, st, st, f.calendar, nil)
	f.writer = NewBookingWriter(st, st, st, st, st, st, st, f.events, f.calendar, nil)
	f.schedules = NewScheduleAdmin(st, st, st, 0, nil)
	return f
}

func (f *fixture) setNow(t time.Time) {
	f.calendar.Now = func() time.Time { return t }
	f.calc.calendar = f.calendar
	f.writer.calendar = f.calendar
}

// setCalendar swaps the zone and clock of both the calculator and the
// writer.
func (f *fixture) setCalendar(c Calendar) {
	f.calendar = c
	f.calc.calendar = c
	f.writer.calendar = c
}

func (f *fixture) book(start, end string) uint64 {
	return f.store.addBooking(model.Booking{
		TenantID: tenantID, ProfessionalID: proID, Date: monday,
		Start: interval.MustClock(start), End: interval.MustClock(end),
	})
}

func clocks(ss ...string) []interval.Clock {
	out := make([]interval.Clock, 0, len(ss))
	for _, s := range ss {
		out = append(out, interval.MustClock(s))
	}
	return out
}
