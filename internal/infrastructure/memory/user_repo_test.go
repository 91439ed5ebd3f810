package memory

import (
	"context"
	"testing"

	"github.com/streamview/auth-service/internal/domain"
)

func TestUserRepo_CreateAndLookup(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	ctx := context.Background()

	u, err := r.Create(ctx, domain.User{ID: "u1", Email: "A@X.com", PasswordHash: "h", Role: "user"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}

	if _, err := r.GetByEmail(ctx, " a@x.com "); err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if _, err := r.GetByID(ctx, "u1"); err != nil {
		t.Fatalf("get by id: %v", err)
	}

	_, err = r.Create(ctx, domain.User{ID: "u2", Email: "a@x.com", PasswordHash: "h", Role: "user"})
	if !domain.Is(err, "email_already_exists") {
		t.Fatalf("expected email_already_exists, got %v", err)
	}
}

func TestUserRepo_RotateRefreshToken_CompareAndSwap(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	ctx := context.Background()

	if _, err := r.Create(ctx, domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", Role: "user"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.SetRefreshToken(ctx, "u1", "rt1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := r.RotateRefreshToken(ctx, "u1", "rt1", "rt2"); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	// The consumed token no longer swaps.
	err := r.RotateRefreshToken(ctx, "u1", "rt1", "rt3")
	if !domain.Is(err, "refresh_token_invalid") {
		t.Fatalf("expected refresh_token_invalid, got %v", err)
	}

	u, _ := r.GetByID(ctx, "u1")
	if u.RefreshToken != "rt2" {
		t.Fatalf("expected rt2 stored, got %q", u.RefreshToken)
	}
}

func TestUserRepo_ClearRefreshToken_ConditionalNoOp(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	ctx := context.Background()

	if _, err := r.Create(ctx, domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", Role: "user"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.SetRefreshToken(ctx, "u1", "current"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A stale token does not clear the current session.
	if err := r.ClearRefreshToken(ctx, "u1", "stale"); err != nil {
		t.Fatalf("clear stale: %v", err)
	}
	u, _ := r.GetByID(ctx, "u1")
	if u.RefreshToken != "current" {
		t.Fatalf("expected current kept, got %q", u.RefreshToken)
	}

	if err := r.ClearRefreshToken(ctx, "u1", "current"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	u, _ = r.GetByID(ctx, "u1")
	if u.RefreshToken != "" {
		t.Fatalf("expected cleared, got %q", u.RefreshToken)
	}
}
