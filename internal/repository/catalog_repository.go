package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// The catalog tables (services, professionals, clients) are owned by the
// tenant administration service. The engine only reads them.

// ServiceRepo reads the service catalog.
type ServiceRepo struct {
	conn
}

func NewServiceRepo(db *sql.DB, timeout time.Duration) *ServiceRepo {
	return &ServiceRepo{conn: newConn(db, timeout)}
}

// GetService returns ErrNotFound for unknown or inactive services.
func (r *ServiceRepo) GetService(ctx context.Context, tenantID, serviceID uint64) (*model.Service, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT id, tenant_id, name, duration_minutes, price_cents, active
	           FROM services WHERE id = ? AND tenant_id = ? AND active = 1`
	var s model.Service
	err := r.db.QueryRowContext(ctx, q, serviceID, tenantID).Scan(&s.ID, &s.TenantID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ProfessionalRepo reads the professionals of a tenant.
type ProfessionalRepo struct {
	conn
}

func NewProfessionalRepo(db *sql.DB, timeout time.Duration) *ProfessionalRepo {
	return &ProfessionalRepo{conn: newConn(db, timeout)}
}

// GetProfessional returns ErrNotFound for unknown or inactive
// professionals.
func (r *ProfessionalRepo) GetProfessional(ctx context.Context, tenantID, professionalID uint64) (*model.Professional, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT id, tenant_id, name, uses_business_hours, active
	           FROM professionals WHERE id = ? AND tenant_id = ? AND active = 1`
	var p model.Professional
	err := r.db.QueryRowContext(ctx, q, professionalID, tenantID).Scan(&p.ID, &p.TenantID, &p.Name, &p.UsesBusinessHours, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ClientRepo reads client records for display next to bookings.
type ClientRepo struct {
	conn
}

func NewClientRepo(db *sql.DB, timeout time.Duration) *ClientRepo {
	return &ClientRepo{conn: newConn(db, timeout)}
}

func (r *ClientRepo) GetClient(ctx context.Context, tenantID, clientID uint64) (*model.Client, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	const q = `SELECT id, tenant_id, name, phone FROM clients WHERE id = ? AND tenant_id = ?`
	var (
		c     model.Client
		phone sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, clientID, tenantID).Scan(&c.ID, &c.TenantID, &c.Name, &phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Phone = phone.String
	return &c, nil
}
