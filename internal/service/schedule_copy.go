package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/model"
)

// CopyRequest clones the active rows of SourceWeekday onto each
// destination weekday. ProfessionalID zero targets the business hours.
type CopyRequest struct {
	TenantID       uint64
	ProfessionalID uint64
	SourceWeekday  time.Weekday
	Destinations   []time.Weekday
}

// DayCopyResult reports the outcome for one destination weekday.
type DayCopyResult struct {
	Weekday time.Weekday `json:"weekday"`
	Copied  int          `json:"copied"`
	Error   string       `json:"error,omitempty"`
}

// CopySchedule processes each destination independently: a destination's
// existing active rows are deactivated and the source rows cloned onto it
// in one transaction for that day. A failing day does not undo days that
// were already copied; its error is reported in the result. The call only
// fails as a whole when the source itself is unusable.
func (s *ScheduleAdmin) CopySchedule(ctx context.Context, req CopyRequest) ([]DayCopyResult, error) {
	if req.SourceWeekday < time.Sunday || req.SourceWeekday > time.Saturday {
		return nil, fmt.Errorf("%w: weekday %d", ErrInvalidRange, int(req.SourceWeekday))
	}
	if len(req.Destinations) == 0 {
		return nil, fmt.Errorf("%w: no destination weekdays", ErrInvalidRange)
	}

	var copyDay func(context.Context, time.Weekday) (int, error)
	if req.ProfessionalID == 0 {
		src, err := s.business.ListBusinessHours(ctx, req.TenantID, req.SourceWeekday, true)
		if err != nil {
			return nil, err
		}
		if len(src) == 0 {
			return nil, fmt.Errorf("%w for %s", ErrBusinessHoursNotConfigured, req.SourceWeekday)
		}
		copyDay = func(ctx context.Context, wd time.Weekday) (int, error) {
			rows := make([]model.BusinessHours, 0, len(src))
			for _, r := range src {
				rows = append(rows, model.BusinessHours{TenantID: req.TenantID, Weekday: wd, Start: r.Start, End: r.End, Active: true})
			}
			return len(rows), s.business.ReplaceBusinessHoursDay(ctx, req.TenantID, wd, rows)
		}
	} else {
		if _, err := s.professionals.GetProfessional(ctx, req.TenantID, req.ProfessionalID); err != nil {
			return nil, lookupErr(err, "professional", req.ProfessionalID)
		}
		src, err := s.professional.ListProfessionalHours(ctx, req.TenantID, req.ProfessionalID, req.SourceWeekday, true)
		if err != nil {
			return nil, err
		}
		if len(src) == 0 {
			return nil, fmt.Errorf("%w for professional %d on %s", ErrProfessionalHoursNotConfigured, req.ProfessionalID, req.SourceWeekday)
		}
		copyDay = func(ctx context.Context, wd time.Weekday) (int, error) {
			rows := make([]model.ProfessionalHours, 0, len(src))
			for _, r := range src {
				rows = append(rows, model.ProfessionalHours{
					TenantID: req.TenantID, ProfessionalID: req.ProfessionalID,
					Weekday: wd, Start: r.Start, End: r.End, Active: true,
				})
			}
			return len(rows), s.professional.ReplaceProfessionalHoursDay(ctx, req.TenantID, req.ProfessionalID, wd, rows)
		}
	}

	results := make([]DayCopyResult, 0, len(req.Destinations))
	seen := make(map[time.Weekday]struct{}, len(req.Destinations))
	for _, wd := range req.Destinations {
		if _, dup := seen[wd]; dup {
			continue
		}
		seen[wd] = struct{}{}
		res := DayCopyResult{Weekday: wd}
		switch {
		case wd < time.Sunday || wd > time.Saturday:
			res.Error = fmt.Sprintf("%v: weekday %d", ErrInvalidRange, int(wd))
		case wd == req.SourceWeekday:
			res.Error = fmt.Sprintf("%v: destination equals source weekday", ErrInvalidRange)
		default:
			n, err := copyDay(ctx, wd)
			if err != nil {
				res.Error = err.Error()
				s.log.Warn("schedule copy failed for weekday",
					zap.Uint64("tenant_id", req.TenantID),
					zap.Uint64("professional_id", req.ProfessionalID),
					zap.Stringer("weekday", wd),
					zap.Error(err),
				)
			} else {
				res.Copied = n
			}
		}
		results = append(results, res)
	}
	return results, nil
}
