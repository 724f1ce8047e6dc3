package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/utils"
)

// AuthHandler mints access tokens for local development. Production
// sessions are issued by the external auth service with the same secret;
// the router only mounts this handler outside production.
type AuthHandler struct {
	Secret string
	TTLMin int
}

func NewAuthHandler(secret string, ttlMin int) *AuthHandler {
	return &AuthHandler{Secret: secret, TTLMin: ttlMin}
}

type devTokenReq struct {
	UserID   uint64  `json:"user_id"`
	Role     string  `json:"role"` // OWNER | STAFF | CUSTOMER
	TenantID uint64  `json:"tenant_id"`
	ClientID *uint64 `json:"client_id"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// DevToken handles POST /v1/dev/token.
func (h *AuthHandler) DevToken(c echo.Context) error {
	var req devTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case middleware.RoleOwner, middleware.RoleStaff, middleware.RoleCustomer:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be OWNER, STAFF or CUSTOMER"})
	}
	if req.UserID == 0 || req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/tenant_id required"})
	}
	tok, err := utils.NewAccessToken(h.Secret, utils.TokenSubject{
		UserID:   req.UserID,
		Role:     role,
		TenantID: req.TenantID,
		ClientID: req.ClientID,
	}, h.TTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: tok.Token, Expires: tok.Exp}})
}
