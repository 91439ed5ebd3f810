package session

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/streamview/auth-service/internal/domain"
)

// Signup creates a user and starts a session. New users are always
// plain users; role elevation never happens through this path.
func (s *Service) Signup(ctx context.Context, name, email, password string) (SignupResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || password == "" {
		return SignupResult{}, domain.ErrMissingField("email/password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return SignupResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         string(domain.RoleUser),
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return SignupResult{}, err
	}

	toks, err := s.issueTokens(created.ID, created.Email, created.Role)
	if err != nil {
		return SignupResult{}, err
	}

	if err := s.users.SetRefreshToken(ctx, created.ID, toks.RefreshToken); err != nil {
		return SignupResult{}, err
	}

	// Best-effort: a broker outage must not fail the signup.
	if err := s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID: created.ID,
		Email:  created.Email,
		Name:   created.Name,
	}); err != nil {
		s.audit("user_registered_event_dropped", map[string]string{"user_id": created.ID})
	}

	s.audit("user_registered", map[string]string{"user_id": created.ID})

	return SignupResult{
		UserID: created.ID,
		Email:  created.Email,
		Role:   created.Role,
		Tokens: toks,
	}, nil
}
