package session

import (
	"context"

	"github.com/streamview/auth-service/internal/domain"
)

type RefreshResult struct {
	UserID string
	Email  string
	Role   string
	Tokens TokenPair
}

// Refresh mints a new token pair from a refresh token. The presented
// token must carry a valid signature AND still be the one stored on the
// user record; the swap is a conditional write, so of two racing
// refreshes for the same user exactly one wins and the loser sees
// ErrRefreshTokenInvalid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	if refreshToken == "" {
		return RefreshResult{}, domain.ErrRefreshTokenMissing()
	}

	claims, err := s.signer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return RefreshResult{}, domain.ErrRefreshTokenInvalid()
	}

	// Load the user for the current role; a refreshed session picks up
	// role changes immediately.
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return RefreshResult{}, domain.ErrRefreshTokenInvalid()
		}
		return RefreshResult{}, err
	}

	toks, err := s.issueTokens(u.ID, u.Email, u.Role)
	if err != nil {
		return RefreshResult{}, err
	}

	if err := s.users.RotateRefreshToken(ctx, u.ID, refreshToken, toks.RefreshToken); err != nil {
		return RefreshResult{}, err
	}

	s.audit("refresh_token_rotated", map[string]string{"user_id": u.ID})

	return RefreshResult{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Tokens: toks,
	}, nil
}
