package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

type authFixture struct {
	repo     *stubUserRepo
	sessions *stubSessionStore
	creds    *CredentialStore
	binder   *SessionBinder
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	repo := newStubUserRepo()
	store := newStubSessionStore()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	creds := NewCredentialStore(repo, hasher)
	binder := NewSessionBinder(store, creds, time.Hour, zerolog.Nop())
	return &authFixture{
		repo:     repo,
		sessions: store,
		creds:    creds,
		binder:   binder,
		svc:      NewAuthService(creds, hasher, binder, zerolog.Nop()),
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if user.PasswordHash != "" {
		t.Fatalf("register result must not carry the password hash")
	}

	stored, _ := f.repo.FindByUsername(context.Background(), "alice")
	if stored.PasswordHash == "pw123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Register(context.Background(), "", "pass"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty username, got %v", err)
	}
	if _, err := f.svc.Register(context.Background(), "bob", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Register(context.Background(), "carol", strings.Repeat("é", 40))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for a password over %d bytes, got %v", MaxPasswordBytes, err)
	}
	if _, err := f.repo.FindByUsername(context.Background(), "carol"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("rejected registration must not store a user, got %v", err)
	}
}

func TestAuthService_UsernameWhitespace(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Register(context.Background(), " alice ", "pw123"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	for _, name := range []string{"alice", " alice", "alice\t"} {
		if _, err := f.svc.Authenticate(context.Background(), name, "pw123"); err != nil {
			t.Fatalf("Authenticate(%q) failed: %v", name, err)
		}
	}
	if _, err := f.svc.Authenticate(context.Background(), "   ", "pw123"); !errors.Is(err, domain.ErrNoSuchUser) {
		t.Fatalf("expected ErrNoSuchUser for a blank username, got %v", err)
	}
	if _, err := f.svc.Register(context.Background(), "alice", "other"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for the trimmed duplicate, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()

	_, _ = f.svc.Register(context.Background(), "bob", "pass")
	if _, err := f.svc.Register(context.Background(), "bob", "pass2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	f := newAuthFixture()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), "race", "pw")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrUserExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", successes)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := f.svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.SessionID == "" {
		t.Fatalf("expected session id")
	}
	if res.User.Username != "carol" || res.User.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claim, err := f.sessions.Load(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if claim.UserID != res.User.ID || claim.Role != domain.RoleUser {
		t.Fatalf("unexpected claim: %+v", claim)
	}
}

func TestAuthService_Login_FailuresShareOneCategory(t *testing.T) {
	f := newAuthFixture()
	_, _ = f.svc.Register(context.Background(), "dave", "goodpass")

	_, badPw := f.svc.Login(context.Background(), "dave", "badpass")
	_, noUser := f.svc.Login(context.Background(), "ghost", "pass")

	if !errors.Is(badPw, domain.ErrInvalidCredentials) || !errors.Is(noUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", badPw, noUser)
	}
	if !errors.Is(badPw, domain.ErrBadPassword) {
		t.Fatalf("expected internal reason ErrBadPassword, got %v", badPw)
	}
	if !errors.Is(noUser, domain.ErrNoSuchUser) {
		t.Fatalf("expected internal reason ErrNoSuchUser, got %v", noUser)
	}
	if len(f.sessions.claims) != 0 {
		t.Fatalf("failed logins must not open sessions")
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	f := newAuthFixture()
	f.repo.findErr = errors.New("connection reset")

	_, err := f.svc.Login(context.Background(), "erin", "pw")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected raw store failure, got %v", err)
	}
}

func TestAuthService_Login_SessionSaveFailure(t *testing.T) {
	f := newAuthFixture()
	_, _ = f.svc.Register(context.Background(), "frank", "pw")
	f.sessions.saveErr = errors.New("redis down")

	if _, err := f.svc.Login(context.Background(), "frank", "pw"); err == nil {
		t.Fatalf("expected error when the session cannot be stored")
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	_, _ = f.svc.Register(context.Background(), "gina", "pw")
	res, _ := f.svc.Login(context.Background(), "gina", "pw")

	if err := f.svc.Logout(context.Background(), res.SessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := f.binder.Resolve(context.Background(), res.SessionID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}

	f.sessions.delErr = errors.New("redis down")
	if err := f.svc.Logout(context.Background(), "whatever"); err == nil {
		t.Fatalf("expected logout to report store failure")
	}
}
