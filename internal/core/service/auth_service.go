package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

// AuthService implements registration, the username/password strategy, and
// session login/logout.
type AuthService struct {
	credentials *CredentialStore
	hasher      ports.PasswordHasher
	sessions    *SessionBinder
	log         zerolog.Logger

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(credentials *CredentialStore, hasher ports.PasswordHasher, sessions *SessionBinder, log zerolog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		hasher:      hasher,
		sessions:    sessions,
		log:         log,
	}
}

// Register creates a self-service account. The role is always domain.RoleUser.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.credentials.Create(ctx, username, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user.Public(), nil
}

// Authenticate verifies a username/password pair. Failures wrap both
// domain.ErrInvalidCredentials and the internal reason (domain.ErrNoSuchUser
// or domain.ErrBadPassword) so callers can log the reason but surface only
// the generic category.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, domain.ErrNoSuchUser)
	}

	user, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// keep timing equal to the bad-password path
			s.hasher.Verify(password, s.decoy())
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, domain.ErrNoSuchUser)
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, domain.ErrBadPassword)
	}
	return user.Public(), nil
}

// Login authenticates and opens a session for the identity.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			reason := "bad_password"
			if errors.Is(err, domain.ErrNoSuchUser) {
				reason = "no_such_user"
			}
			s.log.Info().Str("username", username).Str("reason", reason).Msg("login rejected")
		}
		return nil, err
	}

	sessionID, err := s.sessions.Open(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")
	return &ports.LoginResult{User: user, SessionID: sessionID}, nil
}

// Logout invalidates the session. An empty id is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-for-timing")
		if err == nil {
			s.decoyHash = hash
		}
	})
	return s.decoyHash
}
