package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

const sessionIDBytes = 32

// SessionBinder maps identities to opaque session ids and back.
//
// The stored claim only carries the user id and the role at login time. The
// role is informational: Resolve always re-reads the full identity from the
// credential store, paying one store read per authenticated request so that
// role changes and deleted users take effect on the very next request.
type SessionBinder struct {
	store       ports.SessionStore
	credentials *CredentialStore
	ttl         time.Duration
	log         zerolog.Logger
}

func NewSessionBinder(store ports.SessionStore, credentials *CredentialStore, ttl time.Duration, log zerolog.Logger) *SessionBinder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionBinder{store: store, credentials: credentials, ttl: ttl, log: log}
}

// TTL is the lifetime of a freshly opened session.
func (b *SessionBinder) TTL() time.Duration {
	return b.ttl
}

// Serialize produces the minimal claim for user.
func (b *SessionBinder) Serialize(user *domain.User) domain.SessionClaim {
	return domain.SessionClaim{
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}
}

// Deserialize re-resolves the current identity behind claim.
func (b *SessionBinder) Deserialize(ctx context.Context, claim domain.SessionClaim) (*domain.User, error) {
	if claim.UserID == "" {
		return nil, domain.ErrUserNotFound
	}
	return b.credentials.FindByID(ctx, claim.UserID)
}

// Open stores a new session for user and returns its opaque id.
func (b *SessionBinder) Open(ctx context.Context, user *domain.User) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	if err := b.store.Save(ctx, id, b.Serialize(user), b.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

// Resolve returns the live identity for sessionID. Unknown, expired, and
// orphaned sessions all yield domain.ErrUnauthorized; store failures are
// returned as-is.
func (b *SessionBinder) Resolve(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}

	claim, err := b.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	user, err := b.Deserialize(ctx, *claim)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if delErr := b.store.Delete(ctx, sessionID); delErr != nil {
				b.log.Warn().Err(delErr).Msg("failed to drop orphaned session")
			}
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Destroy invalidates sessionID. Destroying an unknown session is not an error.
func (b *SessionBinder) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return b.store.Delete(ctx, sessionID)
}

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
