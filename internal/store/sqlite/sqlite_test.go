package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/kolejker/OsaltServer/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "bcrypt-hash", "md5-digest")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 || created.Username != "alice" {
		t.Fatalf("unexpected user: %+v", created)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID || byName.PasswordMD5 != "md5-digest" || byName.PasswordHash != "bcrypt-hash" {
		t.Fatalf("unexpected user: %+v", byName)
	}

	if _, err := s.GetUserByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "alice", "h", "m"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", "h2", "m2"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestValidateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "h", "5f4dcc3b5aa765d61d8327deb882cf99")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	tests := []struct {
		name     string
		username string
		digest   string
		wantID   int64
		wantErr  error
	}{
		{name: "match", username: "alice", digest: "5f4dcc3b5aa765d61d8327deb882cf99", wantID: u.ID},
		{name: "wrong digest", username: "alice", digest: "nope", wantErr: store.ErrNotFound},
		{name: "unknown user", username: "bob", digest: "5f4dcc3b5aa765d61d8327deb882cf99", wantErr: store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := s.ValidateUser(ctx, tt.username, tt.digest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if id != tt.wantID {
				t.Fatalf("expected id %d, got %d", tt.wantID, id)
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := s.CreateUser(ctx, name, "h", "m"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	// Same-second inserts fall back to id ordering.
	if users[0].Username != "carol" || users[2].Username != "alice" {
		t.Fatalf("unexpected order: %s, %s, %s", users[0].Username, users[1].Username, users[2].Username)
	}
}
