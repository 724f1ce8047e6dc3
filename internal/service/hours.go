package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
)

// operatingHours resolves the windows a professional works on a weekday:
// the tenant's business hours, or the professional's own rows when the
// professional does not use them.
type operatingHours struct {
	business     BusinessHoursReader
	professional ProfessionalHoursReader
}

func (h operatingHours) windows(ctx context.Context, pro *model.Professional, wd time.Weekday) ([]interval.Interval, error) {
	var windows []interval.Interval
	if pro.UsesBusinessHours {
		rows, err := h.business.ListBusinessHours(ctx, pro.TenantID, wd, true)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			windows = append(windows, r.Window())
		}
		if len(windows) == 0 {
			return nil, fmt.Errorf("%w for %s", ErrBusinessHoursNotConfigured, wd)
		}
		return windows, nil
	}
	rows, err := h.professional.ListProfessionalHours(ctx, pro.TenantID, pro.ID, wd, true)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		windows = append(windows, r.Window())
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w for professional %d on %s", ErrProfessionalHoursNotConfigured, pro.ID, wd)
	}
	return windows, nil
}

// withinHours reports whether slot lies entirely inside one window.
func withinHours(slot interval.Interval, windows []interval.Interval) bool {
	for _, w := range windows {
		if w.Valid() && w.Contains(slot) {
			return true
		}
	}
	return false
}
