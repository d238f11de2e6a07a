package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/shopadmin/catalog-auth/internal/api/middleware"
	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// currentUser returns the identity resolved by the session middleware.
// Handlers mounted without it fail closed.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
