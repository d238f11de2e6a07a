package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/shopadmin/catalog-auth/internal/api/metrics"
	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// RequireRole lets the request through only when the acting identity has one
// of the allowed roles. It must run after RequireAuthenticated; without an
// identity it answers Unauthorized so the role check never leaks.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("no_session").Inc()
				return domain.ErrUnauthorized
			}
			if _, ok := allowed[user.Role]; !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("role").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
