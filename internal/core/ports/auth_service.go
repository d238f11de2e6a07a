package ports

import (
	"context"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *domain.User
	SessionID string
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}
