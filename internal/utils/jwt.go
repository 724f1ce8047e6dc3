package utils // package utils provides helpers for minting access tokens

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenSubject describes who a token is minted for. ClientID is only set
// for customer sessions linked to a client record.
type TokenSubject struct {
	UserID   uint64
	Role     string
	TenantID uint64
	ClientID *uint64
}

// NewAccessToken builds and signs an HS256 JWT carrying the claims the
// booking API verifies: sub, role, tenant_id, optional client_id, exp and
// iat. Production tokens come from the auth service; this helper serves
// development and tests.
func NewAccessToken(secret string, s TokenSubject, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":       strconv.FormatUint(s.UserID, 10),
		"role":      s.Role,
		"tenant_id": s.TenantID,
		"exp":       exp.Unix(),
		"iat":       now.Unix(),
	}
	if s.ClientID != nil {
		claims["client_id"] = *s.ClientID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
