package middleware

// identity.go defines the authenticated caller as seen by handlers and the
// helpers other middleware use to read it back from the Echo context.

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Roles carried in the "role" claim.
const (
	RoleOwner    = "OWNER"
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

const callerKey = "caller"

// Caller is the verified session of a request.
type Caller struct {
	UserID   string
	Role     string
	TenantID uint64
	// ClientID links a customer session to its client record. Nil for
	// staff and for customers without one.
	ClientID *uint64
}

// Internal reports whether the caller acts on behalf of the business and
// therefore bypasses booking policy rules.
func (c Caller) Internal() bool {
	return c.Role == RoleOwner || c.Role == RoleStaff
}

// CallerFrom returns the caller stored by JWTAuth.
func CallerFrom(c echo.Context) (Caller, bool) {
	v, ok := c.Get(callerKey).(Caller)
	return v, ok
}

// userID extracts a user identifier for keys and logs. It returns "guest"
// when no user is authenticated.
func userID(c echo.Context) string {
	if cl, ok := CallerFrom(c); ok && cl.UserID != "" {
		return cl.UserID
	}
	return "guest"
}

// claimUint reads a numeric claim that may be encoded as a JSON number or
// a decimal string.
func claimUint(v any) (uint64, error) {
	switch t := v.(type) {
	case float64:
		if t < 0 || t != float64(uint64(t)) {
			return 0, fmt.Errorf("not an unsigned integer: %v", t)
		}
		return uint64(t), nil
	case string:
		return strconv.ParseUint(t, 10, 64)
	case nil:
		return 0, fmt.Errorf("missing")
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}

// claimString renders the subject claim, which issuers encode either as a
// string or as a number.
func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatUint(uint64(t), 10)
	}
	return ""
}
