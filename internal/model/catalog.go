package model

// Service is a catalog entry offered by a tenant. The booking engine only
// reads it; prices are in cents.
type Service struct {
	ID              uint64 `json:"id"`
	TenantID        uint64 `json:"tenant_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	Active          bool   `json:"active"`
}

// Professional is a member of staff who can be booked. UsesBusinessHours
// makes the tenant's business hours authoritative for every weekday and
// causes the professional's own hour rows to be ignored.
type Professional struct {
	ID                uint64 `json:"id"`
	TenantID          uint64 `json:"tenant_id"`
	Name              string `json:"name"`
	UsesBusinessHours bool   `json:"uses_business_hours"`
	Active            bool   `json:"active"`
}

// Client is the customer record attached to a booking for display only.
type Client struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}
