package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// PolicyAdmin reads and writes the per-tenant booking policy.
type PolicyAdmin struct {
	policies PolicyStore
}

// NewPolicyAdmin wires the policy service.
func NewPolicyAdmin(policies PolicyStore) *PolicyAdmin {
	if policies == nil {
		panic("nil store passed to NewPolicyAdmin")
	}
	return &PolicyAdmin{policies: policies}
}

// GetPolicy returns the tenant's policy or ErrPolicyNotConfigured.
func (p *PolicyAdmin) GetPolicy(ctx context.Context, tenantID uint64) (*model.BookingPolicy, error) {
	pol, err := p.policies.GetPolicy(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPolicyNotConfigured
		}
		return nil, err
	}
	return pol, nil
}

// SavePolicy creates or replaces the tenant's policy.
func (p *PolicyAdmin) SavePolicy(ctx context.Context, pol model.BookingPolicy) (*model.BookingPolicy, error) {
	switch {
	case pol.MinLeadHours < 0:
		return nil, fmt.Errorf("%w: min_lead_hours must not be negative", ErrInvalidRange)
	case pol.MaxAdvanceDays < 0:
		return nil, fmt.Errorf("%w: max_advance_days must not be negative", ErrInvalidRange)
	case pol.TurnIntervalMinutes < 0:
		return nil, fmt.Errorf("%w: turn_interval_minutes must not be negative", ErrInvalidRange)
	case pol.MinCancelNoticeHours < 0:
		return nil, fmt.Errorf("%w: min_cancel_notice_hours must not be negative", ErrInvalidRange)
	}
	if err := p.policies.UpsertPolicy(ctx, &pol); err != nil {
		return nil, err
	}
	return &pol, nil
}
