package ports

import (
	"context"
	"time"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// SessionStore maps opaque session ids to identity claims.
// Load returns domain.ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, id string, claim domain.SessionClaim, ttl time.Duration) error
	Load(ctx context.Context, id string) (*domain.SessionClaim, error)
	Delete(ctx context.Context, id string) error
}

// SessionResolver turns an opaque session id into the live identity acting on a request.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*domain.User, error)
}
