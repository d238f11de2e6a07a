package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/shopadmin/catalog-auth/internal/api/metrics"
	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

const userKey = "user"

// RequireAuthenticated resolves the session cookie to a live identity and
// stores it in the context. Requests without one stop with domain.ErrUnauthorized.
func RequireAuthenticated(resolver ports.SessionResolver, cookie *SessionCookie) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, err := cookie.Read(c)
			if err != nil {
				reason := "invalid_session"
				if errors.Is(err, ErrNoSessionCookie) {
					reason = "no_session"
				} else {
					cookie.Clear(c)
				}
				metrics.AuthorizationDenialsTotal.WithLabelValues(reason).Inc()
				return domain.ErrUnauthorized
			}

			user, err := resolver.Resolve(c.Request().Context(), sid)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					cookie.Clear(c)
					metrics.AuthorizationDenialsTotal.WithLabelValues("invalid_session").Inc()
				}
				return err
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// CurrentUser returns the identity stored by RequireAuthenticated.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userKey).(*domain.User)
	return user, ok && user != nil
}

// SetCurrentUser stores user as the acting identity.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}
