package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// PolicyRepo stores the single booking policy row of each tenant.
type PolicyRepo struct {
	conn
}

func NewPolicyRepo(db *sql.DB, timeout time.Duration) *PolicyRepo {
	return &PolicyRepo{conn: newConn(db, timeout)}
}

// GetPolicy returns ErrNotFound when the tenant has not configured a
// policy yet.
func (r *PolicyRepo) GetPolicy(ctx context.Context, tenantID uint64) (*model.BookingPolicy, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT tenant_id, min_lead_hours, max_advance_days, same_day_allowed,
	                  turn_interval_minutes, min_cancel_notice_hours, updated_at
	           FROM booking_policies WHERE tenant_id = ?`
	var p model.BookingPolicy
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(&p.TenantID, &p.MinLeadHours, &p.MaxAdvanceDays,
		&p.SameDayAllowed, &p.TurnIntervalMinutes, &p.MinCancelNoticeHours, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpsertPolicy inserts or replaces the tenant's policy.
func (r *PolicyRepo) UpsertPolicy(ctx context.Context, p *model.BookingPolicy) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `INSERT INTO booking_policies
	             (tenant_id, min_lead_hours, max_advance_days, same_day_allowed, turn_interval_minutes, min_cancel_notice_hours)
	           VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             min_lead_hours = VALUES(min_lead_hours),
	             max_advance_days = VALUES(max_advance_days),
	             same_day_allowed = VALUES(same_day_allowed),
	             turn_interval_minutes = VALUES(turn_interval_minutes),
	             min_cancel_notice_hours = VALUES(min_cancel_notice_hours),
	             updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, q, p.TenantID, p.MinLeadHours, p.MaxAdvanceDays, p.SameDayAllowed,
		p.TurnIntervalMinutes, p.MinCancelNoticeHours); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}
