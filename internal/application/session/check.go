package session

import (
	"context"

	"github.com/streamview/auth-service/internal/domain"
)

// Status is the answer to the "am I logged in" probe. Tokens is non-nil
// only when the probe fell back to the refresh token and rotated it; the
// transport layer must then reset both cookies.
type Status struct {
	Authenticated bool
	UserID        string
	Email         string
	Role          string
	Tokens        *TokenPair
}

// CheckStatus resolves the current auth status from the two cookies.
//
// The probe is deliberately more forgiving than the route gate: an
// EXPIRED access token falls back to the refresh token, but an access
// token that fails verification for any other reason is definitively
// invalid and no fallback happens. Keep that asymmetry.
func (s *Service) CheckStatus(ctx context.Context, accessToken, refreshToken string) (Status, error) {
	if accessToken == "" && refreshToken == "" {
		// No credentials at all: answer without touching storage.
		return Status{}, domain.ErrTokenMissing()
	}

	if accessToken != "" {
		claims, err := s.signer.VerifyAccessToken(accessToken)
		switch {
		case err == nil:
			// Fresh role lookup so a downgrade is visible to the probe.
			u, lookupErr := s.users.GetByID(ctx, claims.UserID)
			if lookupErr != nil {
				if domain.Is(lookupErr, "user_not_found") {
					return Status{}, domain.ErrTokenInvalid()
				}
				return Status{}, lookupErr
			}
			return Status{
				Authenticated: true,
				UserID:        u.ID,
				Email:         u.Email,
				Role:          u.Role,
			}, nil

		case domain.Is(err, "token_expired"):
			// Fall through to the refresh path.

		default:
			// Tampered or garbage token: no refresh fallback.
			return Status{}, domain.ErrTokenInvalid()
		}
	}

	if refreshToken == "" {
		return Status{}, domain.ErrRefreshTokenMissing()
	}

	res, err := s.Refresh(ctx, refreshToken)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Authenticated: true,
		UserID:        res.UserID,
		Email:         res.Email,
		Role:          res.Role,
		Tokens:        &res.Tokens,
	}, nil
}
