package ports

import (
	"context"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// UserRepository defines persistence for identities. Create must enforce
// username uniqueness atomically and report collisions as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// PasswordHasher is a one-way, salted, deliberately slow password hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
