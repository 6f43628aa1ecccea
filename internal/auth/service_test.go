package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/core"
	"github.com/kolejker/OsaltServer/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()
	return newTestAuthServiceWithMode(t, core.BroadcastQueue)
}

func newTestAuthServiceWithMode(t *testing.T, mode core.BroadcastMode) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	engine, err := core.NewEngine(core.Options{BroadcastMode: mode}, nil, &logger)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	tokens := &TokenConfig{
		Secret: []byte("test-secret-change-me"),
		Issuer: "test",
	}

	return NewService(st, engine, tokens, DefaultLoginOptions(), &logger)
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	for _, name := range []string{"ab", " ab ", "sixteen-chars-xx", "bad name", "émile"} {
		if _, err := svc.Register(ctx, name, "password123"); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("%q: expected ErrInvalidUsername, got %v", name, err)
		}
	}
}

func TestRegister_RejectsInvalidPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "abc", "12345"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	long := make([]byte, maxPasswordLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := svc.Register(ctx, "abc", string(long)); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestRegister_TrimsUsernameAndStoresBothCredentials(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " alice ", "password")
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.PasswordMD5 != "5f4dcc3b5aa765d61d8327deb882cf99" {
		t.Fatalf("unexpected digest %q", user.PasswordMD5)
	}
	if err := ComparePassword(user.PasswordHash, "password"); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}

	// Should collide because the stored username is trimmed.
	if _, err := svc.Register(ctx, "alice", "password123"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUsers(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if _, err := svc.Register(ctx, name, "password"); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	users, err := svc.Users(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
