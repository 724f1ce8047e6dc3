package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ProfessionalHoursRepo stores per-professional schedule overrides.
type ProfessionalHoursRepo struct {
	conn
}

// NewProfessionalHoursRepo returns a repository bound to db.
func NewProfessionalHoursRepo(db *sql.DB, timeout time.Duration) *ProfessionalHoursRepo {
	return &ProfessionalHoursRepo{conn: newConn(db, timeout)}
}

const professionalHoursColumns = `id, tenant_id, professional_id, weekday, start_time, end_time, active, created_at, updated_at`

func scanProfessionalHours(s rowScanner) (model.ProfessionalHours, error) {
	var (
		h          model.ProfessionalHours
		wd         int
		start, end string
	)
	if err := s.Scan(&h.ID, &h.TenantID, &h.ProfessionalID, &wd, &start, &end, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
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

func (r *ProfessionalHoursRepo) list(ctx context.Context, q string, args ...any) ([]model.ProfessionalHours, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProfessionalHours
	for rows.Next() {
		h, err := scanProfessionalHours(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *ProfessionalHoursRepo) ListProfessionalHours(ctx context.Context, tenantID, professionalID uint64, weekday time.Weekday, activeOnly bool) ([]model.ProfessionalHours, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	q := `SELECT ` + professionalHoursColumns + ` FROM professional_hours
	      WHERE tenant_id = ? AND professional_id = ? AND weekday = ?`
	if activeOnly {
		q += ` AND active = 1`
	}
	q += ` ORDER BY start_time, id`
	return r.list(ctx, q, tenantID, professionalID, int(weekday))
}

func (r *ProfessionalHoursRepo) ListAllProfessionalHours(ctx context.Context, tenantID, professionalID uint64) ([]model.ProfessionalHours, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT ` + professionalHoursColumns + ` FROM professional_hours
	           WHERE tenant_id = ? AND professional_id = ? ORDER BY weekday, start_time, id`
	return r.list(ctx, q, tenantID, professionalID)
}

func (r *ProfessionalHoursRepo) GetProfessionalHours(ctx context.Context, tenantID, id uint64) (*model.ProfessionalHours, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT ` + professionalHoursColumns + ` FROM professional_hours WHERE id = ? AND tenant_id = ?`
	h, err := scanProfessionalHours(r.db.QueryRowContext(ctx, q, id, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *ProfessionalHoursRepo) CreateProfessionalHours(ctx context.Context, row *model.ProfessionalHours) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	return insertProfessionalHours(ctx, r.db, row)
}

func insertProfessionalHours(ctx context.Context, ex execer, row *model.ProfessionalHours) error {
	const q = `INSERT INTO professional_hours (tenant_id, professional_id, weekday, start_time, end_time, active)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := ex.ExecContext(ctx, q, row.TenantID, row.ProfessionalID, int(row.Weekday), row.Start.SQL(), row.End.SQL(), row.Active)
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

func (r *ProfessionalHoursRepo) UpdateProfessionalHours(ctx context.Context, row *model.ProfessionalHours) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `UPDATE professional_hours
	           SET weekday = ?, start_time = ?, end_time = ?, active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, int(row.Weekday), row.Start.SQL(), row.End.SQL(), row.Active, row.ID, row.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetProfessionalHours(ctx, row.TenantID, row.ID); err != nil {
			return err
		}
	}
	row.UpdatedAt = time.Now().UTC()
	return nil
}

// ReplaceProfessionalHoursDay is the per-professional counterpart of
// BusinessHoursRepo.ReplaceBusinessHoursDay.
func (r *ProfessionalHoursRepo) ReplaceProfessionalHoursDay(ctx context.Context, tenantID, professionalID uint64, weekday time.Weekday, rows []model.ProfessionalHours) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	const q = `UPDATE professional_hours SET active = 0, updated_at = CURRENT_TIMESTAMP
	           WHERE tenant_id = ? AND professional_id = ? AND weekday = ? AND active = 1`
	if _, err := tx.ExecContext(ctx, q, tenantID, professionalID, int(weekday)); err != nil {
		return err
	}
	for i := range rows {
		rows[i].TenantID, rows[i].ProfessionalID, rows[i].Weekday = tenantID, professionalID, weekday
		if err := insertProfessionalHours(ctx, tx, &rows[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
