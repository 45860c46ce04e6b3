package middleware

import (
	"strings"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/service"

	"github.com/labstack/echo/v4"
)

const AdminClaimsKey = "admin_claims"

type TokenParser interface {
	ParseToken(token string) (*service.AdminClaims, error)
}

// AdminAuth requires a Bearer token issued by /api/admin/login.
func AdminAuth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return apperror.Unauthorized("Missing bearer token")
			}

			claims, err := parser.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return err
			}

			c.Set(AdminClaimsKey, claims)
			return next(c)
		}
	}
}
