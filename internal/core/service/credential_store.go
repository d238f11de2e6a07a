package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

// CredentialStore owns identity records. Every write path hashes the
// plaintext password explicitly before anything reaches the repository.
type CredentialStore struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewCredentialStore(repo ports.UserRepository, hasher ports.PasswordHasher) *CredentialStore {
	return &CredentialStore{repo: repo, hasher: hasher}
}

// Create validates and persists a new identity with a freshly hashed secret.
func (s *CredentialStore) Create(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordBytes)
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// FindByUsername returns domain.ErrUserNotFound when absent.
func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, normalizeUsername(username))
}

// FindByID returns domain.ErrUserNotFound when absent.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// normalizeUsername is applied on every path that stores or looks up a
// username so registration and login agree on the same key.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
