package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/config"
	"taskwise/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "taskwise.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewService(NewUserStore(db.Conn()), config.AuthConfig{
		JWTSecret:  "test-secret",
		AccessTTL:  config.Duration(time.Hour),
		RefreshTTL: config.Duration(24 * time.Hour),
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	user, pair, err := s.Register(ctx, "Ada@Example.com", "s3cretpass", "Ada")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if pair.TokenType != "bearer" {
		t.Errorf("token type: %q", pair.TokenType)
	}

	got, _, err := s.Login(ctx, "ada@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login returned different user")
	}

	if _, _, err := s.Login(ctx, "ada@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := s.Login(ctx, "nobody@example.com", "s3cretpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	if _, _, err := s.Register(ctx, "ada@example.com", "s3cretpass", "Ada"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := s.Register(ctx, "ada@example.com", "otherpass1", "Ada2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	if _, _, err := s.Register(ctx, "not-an-email", "s3cretpass", "X"); err == nil {
		t.Error("expected error for invalid email")
	}
	if _, _, err := s.Register(ctx, "x@example.com", "short", "X"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestTokenVerifyAndRefresh(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	user, pair, err := s.Register(ctx, "ada@example.com", "s3cretpass", "Ada")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := s.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if got != user.ID {
		t.Errorf("subject mismatch: got %s, want %s", got, user.ID)
	}

	// Refresh token is not an access token.
	if _, err := s.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh-as-access: got %v, want ErrInvalidToken", err)
	}

	next, err := s.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := s.VerifyAccess(next.AccessToken); err != nil {
		t.Errorf("refreshed access token invalid: %v", err)
	}

	// Access token is not a refresh token.
	if _, err := s.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access-as-refresh: got %v, want ErrInvalidToken", err)
	}

	if _, err := s.VerifyAccess("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}
}

func TestUserByIDAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	user, err := s.UserByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if user != nil {
		t.Error("expected nil for unknown user")
	}
}
