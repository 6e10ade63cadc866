package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/easybooking/internal/persistence"
	"github.com/example/easybooking/internal/testfixtures"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user := persistence.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "Alice@Example.com",
		PasswordHash: "argon2id-hash",
	}
	if err := h.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	got, err := h.Users.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	// Email lookup is case insensitive; the stored form is lowercase.
	byEmail, err := h.Users.GetUserByEmail(ctx, "ALICE@example.COM")
	if err != nil {
		t.Fatalf("failed to look up by email: %v", err)
	}
	if byEmail.ID != "user-1" || byEmail.PasswordHash != "argon2id-hash" {
		t.Fatalf("unexpected user by email: %+v", byEmail)
	}

	if _, err := h.Users.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_DuplicateAccounts(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	first := persistence.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := h.Users.CreateUser(ctx, first); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	sameEmail := persistence.User{ID: "user-2", Username: "alice2", Email: "alice@example.com", PasswordHash: "hash"}
	if err := h.Users.CreateUser(ctx, sameEmail); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}

	sameUsername := persistence.User{ID: "user-3", Username: "alice", Email: "other@example.com", PasswordHash: "hash"}
	if err := h.Users.CreateUser(ctx, sameUsername); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for username, got %v", err)
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user := persistence.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := h.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	now := testfixtures.ReferenceTime()
	session := persistence.Session{
		ID:        "s-1",
		UserID:    "user-1",
		Token:     "token-1",
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if _, err := h.Sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	got, err := h.Sessions.GetSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.UserID != "user-1" || got.RevokedAt != nil {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("expiry did not round-trip: %v", got.ExpiresAt)
	}

	revoked, err := h.Sessions.RevokeSession(ctx, "token-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to revoke session: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatalf("expected revoked_at to be set")
	}

	if _, err := h.Sessions.RevokeSession(ctx, "missing", now); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteExpiredSessions(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user := persistence.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := h.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	now := testfixtures.ReferenceTime()
	sessions := []persistence.Session{
		{ID: "s-1", UserID: "user-1", Token: "stale", ExpiresAt: now.Add(-time.Hour)},
		{ID: "s-2", UserID: "user-1", Token: "live", ExpiresAt: now.Add(time.Hour)},
	}
	for _, s := range sessions {
		if _, err := h.Sessions.CreateSession(ctx, s); err != nil {
			t.Fatalf("failed to create session %s: %v", s.ID, err)
		}
	}

	if err := h.Sessions.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("failed to prune sessions: %v", err)
	}

	if _, err := h.Sessions.GetSession(ctx, "stale"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected stale session to be pruned, got %v", err)
	}
	if _, err := h.Sessions.GetSession(ctx, "live"); err != nil {
		t.Fatalf("expected live session to survive, got %v", err)
	}
}
