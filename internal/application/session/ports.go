package session

import (
	"context"
	"time"

	"github.com/streamview/auth-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users. The stored refresh token lives on the user
record, so rotation is a storage concern: RotateRefreshToken must be a
single conditional write (swap succeeds only while oldToken is still the
stored one), never read-then-write in application code.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// SetRefreshToken unconditionally overwrites the stored refresh
	// token (login/signup start a fresh session).
	SetRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken swaps oldToken for newToken iff oldToken is
	// still the stored one. Returns ErrRefreshTokenInvalid on mismatch.
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error

	// ClearRefreshToken removes the stored token iff it equals token.
	// Clearing an already-cleared or superseded token is a no-op.
	ClearRefreshToken(ctx context.Context, userID, token string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt. Verification is one-way; plaintext is never compared.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies the two token kinds. Access and refresh tokens are
signed with distinct secrets.
*/
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID, email, role string, ttl time.Duration) (string, error)
	SignRefreshToken(userID, email, role string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
	VerifyRefreshToken(token string) (TokenClaims, error)
}

/*
EventPublisher
--------------
Publishes lifecycle events for downstream consumers (e.g. a mailer).
Publishing is best-effort; a broker outage must not fail signup.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
}

type UserRegisteredEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
