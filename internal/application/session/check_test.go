package session

import (
	"context"
	"testing"

	"github.com/streamview/auth-service/internal/domain"
)

func TestCheckStatus_NoCookies_NoToken_NoStorageAccess(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, _ := newSvcForTest(t)

	_, err := svc.CheckStatus(context.Background(), "", "")
	requireErrCode(t, err, "no_token")

	if users.getByIDCalls != 0 || users.getByEmailCalls != 0 {
		t.Fatalf("expected no repo access, got id=%d email=%d", users.getByIDCalls, users.getByEmailCalls)
	}
}

func TestCheckStatus_ValidAccess_AuthenticatedWithFreshRole(t *testing.T) {
	t.Parallel()

	svc, users, _, signer, _, _ := newSvcForTest(t)

	access, _ := signer.SignAccessToken("u1", "e@x.com", "user", 0)
	// Role changed since the token was minted.
	users.add(domain.User{ID: "u1", Email: "e@x.com", Role: "admin"})

	st, err := svc.CheckStatus(context.Background(), access, "")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !st.Authenticated || st.UserID != "u1" || st.Role != "admin" {
		t.Fatalf("expected authenticated admin, got %+v", st)
	}
	if st.Tokens != nil {
		t.Fatalf("expected no rotation on a valid access token")
	}
}

func TestCheckStatus_ValidAccess_UserDeleted_InvalidToken(t *testing.T) {
	t.Parallel()

	svc, _, _, signer, _, _ := newSvcForTest(t)

	access, _ := signer.SignAccessToken("ghost", "g@x.com", "user", 0)

	_, err := svc.CheckStatus(context.Background(), access, "")
	requireErrCode(t, err, "invalid_token")
}

// A tampered access token must not fall back to the refresh token, even
// when a perfectly valid one is sitting right there.
func TestCheckStatus_TamperedAccess_NoRefreshFallback(t *testing.T) {
	t.Parallel()

	svc, users, _, signer, _, _ := newSvcForTest(t)

	refresh, _ := signer.SignRefreshToken("u1", "e@x.com", "user", 0)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Role: "user", RefreshToken: refresh})

	_, err := svc.CheckStatus(context.Background(), "tampered", refresh)
	requireErrCode(t, err, "invalid_token")

	if users.rotateCalls != 0 {
		t.Fatalf("expected no rotation attempt, got %d", users.rotateCalls)
	}
}

func TestCheckStatus_ExpiredAccess_FallsBackToRefresh(t *testing.T) {
	t.Parallel()

	svc, users, _, signer, _, _ := newSvcForTest(t)

	refresh, _ := signer.SignRefreshToken("u1", "e@x.com", "user", 0)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Role: "user", RefreshToken: refresh})

	signer.verifyAccessFn = func(string) (TokenClaims, error) {
		return TokenClaims{}, domain.ErrTokenExpired()
	}

	st, err := svc.CheckStatus(context.Background(), "expired", refresh)
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !st.Authenticated || st.UserID != "u1" {
		t.Fatalf("expected authenticated, got %+v", st)
	}
	if st.Tokens == nil || st.Tokens.RefreshToken == refresh {
		t.Fatalf("expected a rotated pair, got %+v", st.Tokens)
	}

	u, _ := users.stored("u1")
	if u.RefreshToken != st.Tokens.RefreshToken {
		t.Fatalf("expected rotated token stored, got %q", u.RefreshToken)
	}
}

func TestCheckStatus_ExpiredAccess_NoRefreshCookie_RefreshTokenMissing(t *testing.T) {
	t.Parallel()

	svc, _, _, signer, _, _ := newSvcForTest(t)

	signer.verifyAccessFn = func(string) (TokenClaims, error) {
		return TokenClaims{}, domain.ErrTokenExpired()
	}

	_, err := svc.CheckStatus(context.Background(), "expired", "")
	requireErrCode(t, err, "refresh_token_missing")
}

func TestCheckStatus_RefreshOnly_BadToken_RefreshTokenInvalid(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _ := newSvcForTest(t)

	_, err := svc.CheckStatus(context.Background(), "", "garbage")
	requireErrCode(t, err, "refresh_token_invalid")
}

func TestCheckStatus_RefreshOnly_Valid_RotatesAndAuthenticates(t *testing.T) {
	t.Parallel()

	svc, users, _, signer, _, _ := newSvcForTest(t)

	refresh, _ := signer.SignRefreshToken("u1", "e@x.com", "user", 0)
	users.add(domain.User{ID: "u1", Email: "e@x.com", Role: "user", RefreshToken: refresh})

	st, err := svc.CheckStatus(context.Background(), "", refresh)
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !st.Authenticated || st.Tokens == nil {
		t.Fatalf("expected authenticated with rotated pair, got %+v", st)
	}
}
