package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
)

// DefaultMinWindowMinutes is the shortest schedule window accepted when no
// minimum is configured.
const DefaultMinWindowMinutes = 15

// ScheduleAdmin validates and stores business and professional hours.
type ScheduleAdmin struct {
	business      BusinessHoursStore
	professional  ProfessionalHoursStore
	professionals ProfessionalDirectory
	minMinutes    int
	log           *zap.Logger
}

// NewScheduleAdmin wires the administration service. A non-positive
// minMinutes falls back to DefaultMinWindowMinutes.
func NewScheduleAdmin(business BusinessHoursStore, professional ProfessionalHoursStore, professionals ProfessionalDirectory, minMinutes int, log *zap.Logger) *ScheduleAdmin {
	if business == nil || professional == nil || professionals == nil {
		panic("nil store passed to NewScheduleAdmin")
	}
	if minMinutes <= 0 {
		minMinutes = DefaultMinWindowMinutes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleAdmin{business: business, professional: professional, professionals: professionals, minMinutes: minMinutes, log: log}
}

// existingWindow is an active row considered by the overlap test.
type existingWindow struct {
	id     uint64
	window interval.Interval
}

// validateWindow checks the shape of w and rejects overlap with any other
// active row of the same scope and weekday. selfID excludes the row being
// updated.
func (s *ScheduleAdmin) validateWindow(w interval.Interval, wd time.Weekday, selfID uint64, others []existingWindow) error {
	if wd < time.Sunday || wd > time.Saturday {
		return fmt.Errorf("%w: weekday %d", ErrInvalidRange, int(wd))
	}
	if !w.Valid() {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidRange, w.Start, w.End)
	}
	if w.Minutes() < s.minMinutes {
		return fmt.Errorf("%w: window %s is shorter than %d minutes", ErrInvalidRange, w, s.minMinutes)
	}
	for _, o := range others {
		if o.id == selfID {
			continue
		}
		if w.Overlaps(o.window) {
			return fmt.Errorf("%w: %s overlaps existing window %s", ErrConflict, w, o.window)
		}
	}
	return nil
}

// ---- Business hours ----

// ListBusinessHours returns every row of the tenant, active or not.
func (s *ScheduleAdmin) ListBusinessHours(ctx context.Context, tenantID uint64) ([]model.BusinessHours, error) {
	return s.business.ListAllBusinessHours(ctx, tenantID)
}

// CreateBusinessHours adds an active window.
func (s *ScheduleAdmin) CreateBusinessHours(ctx context.Context, row model.BusinessHours) (*model.BusinessHours, error) {
	row.Active = true
	if err := s.checkBusiness(ctx, row); err != nil {
		return nil, err
	}
	if err := s.business.CreateBusinessHours(ctx, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateBusinessHours replaces the window of an existing row. Overlap is
// only checked when the result is active.
func (s *ScheduleAdmin) UpdateBusinessHours(ctx context.Context, row model.BusinessHours) (*model.BusinessHours, error) {
	if _, err := s.business.GetBusinessHours(ctx, row.TenantID, row.ID); err != nil {
		return nil, lookupErr(err, "business hours", row.ID)
	}
	if row.Active {
		if err := s.checkBusiness(ctx, row); err != nil {
			return nil, err
		}
	} else if err := s.validateWindow(row.Window(), row.Weekday, row.ID, nil); err != nil {
		return nil, err
	}
	if err := s.business.UpdateBusinessHours(ctx, &row); err != nil {
		return nil, lookupErr(err, "business hours", row.ID)
	}
	return &row, nil
}

// DeactivateBusinessHours switches a row off without deleting it.
func (s *ScheduleAdmin) DeactivateBusinessHours(ctx context.Context, tenantID, id uint64) error {
	row, err := s.business.GetBusinessHours(ctx, tenantID, id)
	if err != nil {
		return lookupErr(err, "business hours", id)
	}
	if !row.Active {
		return nil
	}
	row.Active = false
	return s.business.UpdateBusinessHours(ctx, row)
}

func (s *ScheduleAdmin) checkBusiness(ctx context.Context, row model.BusinessHours) error {
	if row.Weekday < time.Sunday || row.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d", ErrInvalidRange, int(row.Weekday))
	}
	rows, err := s.business.ListBusinessHours(ctx, row.TenantID, row.Weekday, true)
	if err != nil {
		return err
	}
	others := make([]existingWindow, 0, len(rows))
	for _, r := range rows {
		others = append(others, existingWindow{id: r.ID, window: r.Window()})
	}
	return s.validateWindow(row.Window(), row.Weekday, row.ID, others)
}

// ---- Professional hours ----

// ListProfessionalHours returns every row of a professional.
func (s *ScheduleAdmin) ListProfessionalHours(ctx context.Context, tenantID, professionalID uint64) ([]model.ProfessionalHours, error) {
	if _, err := s.professionals.GetProfessional(ctx, tenantID, professionalID); err != nil {
		return nil, lookupErr(err, "professional", professionalID)
	}
	return s.professional.ListAllProfessionalHours(ctx, tenantID, professionalID)
}

// CreateProfessionalHours adds an active window for a professional.
func (s *ScheduleAdmin) CreateProfessionalHours(ctx context.Context, row model.ProfessionalHours) (*model.ProfessionalHours, error) {
	if _, err := s.professionals.GetProfessional(ctx, row.TenantID, row.ProfessionalID); err != nil {
		return nil, lookupErr(err, "professional", row.ProfessionalID)
	}
	row.Active = true
	if err := s.checkProfessional(ctx, row); err != nil {
		return nil, err
	}
	if err := s.professional.CreateProfessionalHours(ctx, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateProfessionalHours replaces the window of an existing row.
func (s *ScheduleAdmin) UpdateProfessionalHours(ctx context.Context, row model.ProfessionalHours) (*model.ProfessionalHours, error) {
	cur, err := s.professional.GetProfessionalHours(ctx, row.TenantID, row.ID)
	if err != nil {
		return nil, lookupErr(err, "professional hours", row.ID)
	}
	row.ProfessionalID = cur.ProfessionalID
	if row.Active {
		if err := s.checkProfessional(ctx, row); err != nil {
			return nil, err
		}
	} else if err := s.validateWindow(row.Window(), row.Weekday, row.ID, nil); err != nil {
		return nil, err
	}
	if err := s.professional.UpdateProfessionalHours(ctx, &row); err != nil {
		return nil, lookupErr(err, "professional hours", row.ID)
	}
	return &row, nil
}

// DeactivateProfessionalHours switches a row off without deleting it.
func (s *ScheduleAdmin) DeactivateProfessionalHours(ctx context.Context, tenantID, id uint64) error {
	row, err := s.professional.GetProfessionalHours(ctx, tenantID, id)
	if err != nil {
		return lookupErr(err, "professional hours", id)
	}
	if !row.Active {
		return nil
	}
	row.Active = false
	return s.professional.UpdateProfessionalHours(ctx, row)
}

func (s *ScheduleAdmin) checkProfessional(ctx context.Context, row model.ProfessionalHours) error {
	if row.Weekday < time.Sunday || row.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d", ErrInvalidRange, int(row.Weekday))
	}
	rows, err := s.professional.ListProfessionalHours(ctx, row.TenantID, row.ProfessionalID, row.Weekday, true)
	if err != nil {
		return err
	}
	others := make([]existingWindow, 0, len(rows))
	for _, r := range rows {
		others = append(others, existingWindow{id: r.ID, window: r.Window()})
	}
	return s.validateWindow(row.Window(), row.Weekday, row.ID, others)
}
