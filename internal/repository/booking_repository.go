package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// BookingRepo is the booking ledger. Bookings live in the bookings table,
// their captured service lines in booking_services, and writers of the
// same professional and day serialise on a row of professional_day_locks.
type BookingRepo struct {
	conn
}

// NewBookingRepo returns a repository bound to db.
func NewBookingRepo(db *sql.DB, timeout time.Duration) *BookingRepo {
	return &BookingRepo{conn: newConn(db, timeout)}
}

const bookingColumns = `id, tenant_id, professional_id, client_id, booking_date, start_time, end_time,
	total_duration_minutes, total_price_cents, status, deleted_at, created_at, updated_at`

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b          model.Booking
		clientID   sql.NullInt64
		deletedAt  sql.NullTime
		start, end string
		status     string
	)
	err := s.Scan(&b.ID, &b.TenantID, &b.ProfessionalID, &clientID, &b.Date, &start, &end,
		&b.TotalDurationMinutes, &b.TotalPriceCents, &status, &deletedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if clientID.Valid {
		id := uint64(clientID.Int64)
		b.ClientID = &id
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		b.DeletedAt = &t
	}
	b.Status = model.BookingStatus(status)
	if b.Start, err = parseClock("start_time", start); err != nil {
		return b, err
	}
	if b.End, err = parseClock("end_time", end); err != nil {
		return b, err
	}
	return b, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// activeBookingsQuery selects the bookings occupying a professional's day.
const activeBookingsQuery = `SELECT ` + bookingColumns + ` FROM bookings
	WHERE tenant_id = ? AND professional_id = ? AND booking_date = ?
	  AND status <> 'CANCELLED' AND deleted_at IS NULL
	ORDER BY start_time, id`

// ListActiveBookings returns the bookings that are neither cancelled nor
// soft deleted. Lines are not loaded.
func (r *BookingRepo) ListActiveBookings(ctx context.Context, tenantID, professionalID uint64, date time.Time) ([]model.Booking, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	return queryBookings(ctx, r.db, activeBookingsQuery, tenantID, professionalID, dateArg(date))
}

// ListBookings returns every non-deleted booking of the day, cancelled ones
// included, with their lines.
func (r *BookingRepo) ListBookings(ctx context.Context, tenantID, professionalID uint64, date time.Time) ([]model.Booking, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE tenant_id = ? AND professional_id = ? AND booking_date = ? AND deleted_at IS NULL
	           ORDER BY start_time, id`
	out, err := queryBookings(ctx, r.db, q, tenantID, professionalID, dateArg(date))
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, r.db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBooking returns ErrNotFound for unknown, foreign or soft-deleted
// bookings.
func (r *BookingRepo) GetBooking(ctx context.Context, tenantID, bookingID uint64) (*model.Booking, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? AND tenant_id = ? AND deleted_at IS NULL`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, bookingID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	one := []model.Booking{b}
	if err := r.attachLines(ctx, r.db, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// attachLines loads booking_services for bs in a single query.
func (r *BookingRepo) attachLines(ctx context.Context, q querier, bs []model.Booking) error {
	if len(bs) == 0 {
		return nil
	}
	idx := make(map[uint64]int, len(bs))
	args := make([]any, 0, len(bs))
	for i, b := range bs {
		idx[b.ID] = i
		args = append(args, b.ID)
	}
	query := `SELECT booking_id, service_id, service_name, duration_minutes, price_cents
	          FROM booking_services WHERE booking_id IN (?` + strings.Repeat(", ?", len(bs)-1) + `)
	          ORDER BY booking_id, id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bookingID uint64
			l         model.BookingLine
		)
		if err := rows.Scan(&bookingID, &l.ServiceID, &l.ServiceName, &l.DurationMinutes, &l.PriceCents); err != nil {
			return err
		}
		if i, ok := idx[bookingID]; ok {
			bs[i].Lines = append(bs[i].Lines, l)
		}
	}
	return rows.Err()
}

// CreateChecked inserts b and its lines if check accepts the day's active
// bookings. The day lock row is upserted first; InnoDB keeps it
// exclusively locked until the transaction ends, so two writers for the
// same professional and date never run check concurrently. Lock
// contention reported by MySQL is returned as ErrOverlap; errors from
// check are returned unchanged.
func (r *BookingRepo) CreateChecked(ctx context.Context, b *model.Booking, check func(existing []model.Booking) error) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	const lock = `INSERT INTO professional_day_locks (tenant_id, professional_id, lock_date)
	              VALUES (?, ?, ?)
	              ON DUPLICATE KEY UPDATE locked_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, lock, b.TenantID, b.ProfessionalID, dateArg(b.Date)); err != nil {
		return translateWriteErr(err)
	}

	existing, err := queryBookings(ctx, tx, activeBookingsQuery+` FOR UPDATE`, b.TenantID, b.ProfessionalID, dateArg(b.Date))
	if err != nil {
		return translateWriteErr(err)
	}
	if err := check(existing); err != nil {
		return err
	}

	var clientID any
	if b.ClientID != nil {
		clientID = *b.ClientID
	}
	const ins = `INSERT INTO bookings (tenant_id, professional_id, client_id, booking_date, start_time, end_time,
	                 total_duration_minutes, total_price_cents, status)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, b.TenantID, b.ProfessionalID, clientID, dateArg(b.Date),
		b.Start.SQL(), b.End.SQL(), b.TotalDurationMinutes, b.TotalPriceCents, string(b.Status))
	if err != nil {
		return translateWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if len(b.Lines) > 0 {
		query := `INSERT INTO booking_services (booking_id, service_id, service_name, duration_minutes, price_cents) VALUES `
		args := make([]any, 0, len(b.Lines)*5)
		for i, l := range b.Lines {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, b.ID, l.ServiceID, l.ServiceName, l.DurationMinutes, l.PriceCents)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return translateWriteErr(err)
	}
	committed = true
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// TransitionStatus locks the booking row, asks next for the target status
// and writes it when it differs from the current one.
func (r *BookingRepo) TransitionStatus(ctx context.Context, tenantID, bookingID uint64, next func(current *model.Booking) (model.BookingStatus, error)) (*model.Booking, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer rollback(tx, &committed)

	const sel = `SELECT ` + bookingColumns + ` FROM bookings
	             WHERE id = ? AND tenant_id = ? AND deleted_at IS NULL FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, sel, bookingID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	one := []model.Booking{b}
	if err := r.attachLines(ctx, tx, one); err != nil {
		return nil, err
	}
	b = one[0]

	target, err := next(&b)
	if err != nil {
		return nil, err
	}
	if target != b.Status {
		const upd = `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND tenant_id = ?`
		if _, err := tx.ExecContext(ctx, upd, string(target), bookingID, tenantID); err != nil {
			return nil, err
		}
		b.Status = target
		b.UpdatedAt = time.Now().UTC()
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &b, nil
}

// SoftDelete marks the booking deleted. It leaves the ledger immediately.
func (r *BookingRepo) SoftDelete(ctx context.Context, tenantID, bookingID uint64) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `UPDATE bookings SET deleted_at = UTC_TIMESTAMP(), updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND tenant_id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, bookingID, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
