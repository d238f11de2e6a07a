package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User // by username
	nextID  int
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) setRole(username string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username].Role = role
}

func (r *stubUserRepo) remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

type stubSessionStore struct {
	mu      sync.Mutex
	claims  map[string]domain.SessionClaim
	lastTTL time.Duration
	saveErr error
	delErr  error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{claims: make(map[string]domain.SessionClaim)}
}

func (s *stubSessionStore) Save(_ context.Context, id string, claim domain.SessionClaim, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.claims[id] = claim
	s.lastTTL = ttl
	return nil
}

func (s *stubSessionStore) Load(_ context.Context, id string) (*domain.SessionClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &c, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.claims, id)
	return nil
}

type stubProductRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Product
	nextID    int
	createErr error
	updateErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("p%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateOwned mirrors the conditional write of the real Mongo repository.
func (r *stubProductRepo) UpdateOwned(_ context.Context, id, ownerID string, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	cur, ok := r.byID[id]
	if !ok || cur.OwnerID != ownerID {
		return nil, domain.ErrProductNotFound
	}
	cur.Name, cur.Price, cur.Photo = p.Name, p.Price, p.Photo
	clone := *cur
	return &clone, nil
}

func (r *stubProductRepo) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok || cur.OwnerID != ownerID {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubAssetStore struct {
	saved   []string
	saveErr error
	n       int
}

func (a *stubAssetStore) Save(_ context.Context, name string, content io.Reader) (string, error) {
	if a.saveErr != nil {
		return "", a.saveErr
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	a.n++
	path := fmt.Sprintf("%sasset-%d-%s", domain.UploadsPrefix, a.n, strings.ToLower(name))
	a.saved = append(a.saved, path)
	return path, nil
}

func (a *stubAssetStore) Remove(_ context.Context, _ string) error { return nil }

type stubCleaner struct {
	scheduled []string
}

func (c *stubCleaner) Schedule(path string) {
	c.scheduled = append(c.scheduled, path)
}
