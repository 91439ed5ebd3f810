package session

import (
	"context"
	"strings"

	"github.com/streamview/auth-service/internal/domain"
)

// Login authenticates a user and starts a session. Nonexistent email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Hide not-found behind invalid credentials.
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	toks, err := s.issueTokens(u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}

	// Overwrite any prior session: one valid refresh token per user.
	if err := s.users.SetRefreshToken(ctx, u.ID, toks.RefreshToken); err != nil {
		return LoginResult{}, err
	}

	s.audit("user_logged_in", map[string]string{"user_id": u.ID})

	return LoginResult{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Tokens: toks,
	}, nil
}
