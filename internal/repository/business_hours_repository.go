package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// BusinessHoursRepo stores the operating windows of each tenant.
type BusinessHoursRepo struct {
	conn
}

// NewBusinessHoursRepo returns a repository bound to db. A non-positive
// timeout falls back to DefaultQueryTimeout.
func NewBusinessHoursRepo(db *sql.DB, timeout time.Duration) *BusinessHoursRepo {
	return &BusinessHoursRepo{conn: newConn(db, timeout)}
}

const businessHoursColumns = `id, tenant_id, weekday, start_time, end_time, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusinessHours(s rowScanner) (model.BusinessHours, error) {
	var (
		h          model.BusinessHours
		wd         int
		start, end string
	)
	if err := s.Scan(&h.ID, &h.TenantID, &wd, &start, &end, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return h, err
	}
	h.Weekday = time.Weekday(wd)
	var err error
	if h.Start, err = parseClock("start_time", start); err != nil {
		return h, err
	}
	if h.End, err = parseClock("end_time", end); err != nil {
		return h, err
	}
	return h, nil
}

func (r *BusinessHoursRepo) list(ctx context.Context, q string, args ...any) ([]model.BusinessHours, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BusinessHours
	for rows.Next() {
		h, err := scanBusinessHours(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListBusinessHours returns the rows of one weekday ordered by start.
func (r *BusinessHoursRepo) ListBusinessHours(ctx context.Context, tenantID uint64, weekday time.Weekday, activeOnly bool) ([]model.BusinessHours, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	q := `SELECT ` + businessHoursColumns + ` FROM business_hours WHERE tenant_id = ? AND weekday = ?`
	if activeOnly {
		q += ` AND active = 1`
	}
	q += ` ORDER BY start_time, id`
	return r.list(ctx, q, tenantID, int(weekday))
}

// ListAllBusinessHours returns every row of the tenant, the whole week.
func (r *BusinessHoursRepo) ListAllBusinessHours(ctx context.Context, tenantID uint64) ([]model.BusinessHours, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT ` + businessHoursColumns + ` FROM business_hours WHERE tenant_id = ? ORDER BY weekday, start_time, id`
	return r.list(ctx, q, tenantID)
}

// GetBusinessHours fetches one row of the tenant. It returns ErrNotFound
// when the id belongs to another tenant.
func (r *BusinessHoursRepo) GetBusinessHours(ctx context.Context, tenantID, id uint64) (*model.BusinessHours, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT ` + businessHoursColumns + ` FROM business_hours WHERE id = ? AND tenant_id = ?`
	h, err := scanBusinessHours(r.db.QueryRowContext(ctx, q, id, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// CreateBusinessHours inserts row and fills its ID and timestamps.
func (r *BusinessHoursRepo) CreateBusinessHours(ctx context.Context, row *model.BusinessHours) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	return insertBusinessHours(ctx, r.db, row)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBusinessHours(ctx context.Context, ex execer, row *model.BusinessHours) error {
	const q = `INSERT INTO business_hours (tenant_id, weekday, start_time, end_time, active) VALUES (?, ?, ?, ?, ?)`
	res, err := ex.ExecContext(ctx, q, row.TenantID, int(row.Weekday), row.Start.SQL(), row.End.SQL(), row.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row.ID = uint64(id)
	now := time.Now().UTC()
	row.CreatedAt, row.UpdatedAt = now, now
	return nil
}

// UpdateBusinessHours rewrites the window and active flag of an existing
// row.
func (r *BusinessHoursRepo) UpdateBusinessHours(ctx context.Context, row *model.BusinessHours) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `UPDATE business_hours
	           SET weekday = ?, start_time = ?, end_time = ?, active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, int(row.Weekday), row.Start.SQL(), row.End.SQL(), row.Active, row.ID, row.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows for a no-op update too.
		if _, err := r.GetBusinessHours(ctx, row.TenantID, row.ID); err != nil {
			return err
		}
	}
	row.UpdatedAt = time.Now().UTC()
	return nil
}

// ReplaceBusinessHoursDay deactivates the active rows of weekday and
// inserts rows in their place within one transaction.
func (r *BusinessHoursRepo) ReplaceBusinessHoursDay(ctx context.Context, tenantID uint64, weekday time.Weekday, rows []model.BusinessHours) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	const q = `UPDATE business_hours SET active = 0, updated_at = CURRENT_TIMESTAMP
	           WHERE tenant_id = ? AND weekday = ? AND active = 1`
	if _, err := tx.ExecContext(ctx, q, tenantID, int(weekday)); err != nil {
		return err
	}
	for i := range rows {
		rows[i].TenantID, rows[i].Weekday = tenantID, weekday
		if err := insertBusinessHours(ctx, tx, &rows[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
