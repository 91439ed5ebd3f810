package session

import (
	"time"
)

// Service is the session authority: it issues, verifies, and rotates the
// paired access/refresh credentials bound to a user identity.
type Service struct {
	users  UserRepo
	hasher PasswordHasher
	signer TokenSigner
	pub    EventPublisher

	accessTTL  time.Duration
	refreshTTL time.Duration
	audit      func(action string, fields map[string]string)
}

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	pub EventPublisher,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		users:  users,
		hasher: hasher,
		signer: signer,
		pub:    pub,
		audit:  func(string, map[string]string) {},

		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// TokenPair is the issued credential pair. The caller persists the
// refresh token onto the user record and writes the cookies; issuance
// itself has no side effects, so signup, login, and refresh share it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type SignupResult struct {
	UserID string
	Email  string
	Role   string
	Tokens TokenPair
}

type LoginResult struct {
	UserID string
	Email  string
	Role   string
	Tokens TokenPair
}

// issueTokens signs a fresh access/refresh pair for the identity.
func (s *Service) issueTokens(userID, email, role string) (TokenPair, error) {
	access, err := s.signer.SignAccessToken(userID, email, role, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.signer.SignRefreshToken(userID, email, role, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
