package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// minted by the auth service and stores the resulting Caller in the
// context. Tokens must carry sub, role and tenant_id; client_id is
// optional. The user id and role are also exposed as "user_id" and "role"
// for the rate limiter and RequireRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			caller := Caller{UserID: claimString(claims["sub"])}
			caller.Role, _ = claims["role"].(string)
			if caller.UserID == "" || caller.Role == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			tenant, err := claimUint(claims["tenant_id"])
			if err != nil || tenant == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no tenant"})
			}
			caller.TenantID = tenant
			if v, ok := claims["client_id"]; ok && v != nil {
				id, err := claimUint(v)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
				}
				caller.ClientID = &id
			}

			c.Set(callerKey, caller)
			c.Set("user_id", caller.UserID)
			c.Set("role", caller.Role)
			return next(c)
		}
	}
}
