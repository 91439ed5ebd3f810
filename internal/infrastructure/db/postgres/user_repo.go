package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/streamview/auth-service/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id, email, name, password_hash, role, refresh_token, created_at`

func (r *UserRepo) scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Name,
		&ur.PasswordHash,
		&ur.Role,
		&ur.RefreshToken,
		&ur.CreatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:           ur.ID,
		Email:        ur.Email,
		Name:         ur.Name,
		PasswordHash: ur.PasswordHash,
		Role:         ur.Role,
		RefreshToken: ur.RefreshToken.String,
	}
}

// ---------- session.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	ur, err := r.scanUserRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	ur, err := r.scanUserRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	const q = `
INSERT INTO users (id, email, name, password_hash, role)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + userColumns + `;
`
	var ur userRow
	err := r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role,
	).Scan(
		&ur.ID,
		&ur.Email,
		&ur.Name,
		&ur.PasswordHash,
		&ur.Role,
		&ur.RefreshToken,
		&ur.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("refresh_token")
	}

	const q = `
UPDATE users
SET refresh_token = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, token)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

// RotateRefreshToken is the compare-and-swap at the heart of rotation:
// the new token is written only while the old one is still the stored
// one, so concurrent refreshes from the same user (two browser tabs)
// cannot both succeed.
func (r *UserRepo) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if oldToken == "" || newToken == "" {
		return domain.ErrMissingField("refresh_token")
	}

	const q = `
UPDATE users
SET refresh_token = $3
WHERE id = $1 AND refresh_token = $2;
`
	res, err := r.db.ExecContext(ctx, q, userID, oldToken, newToken)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Superseded or never stored: the presented token is dead.
		return domain.ErrRefreshTokenInvalid()
	}
	return nil
}

func (r *UserRepo) ClearRefreshToken(ctx context.Context, userID, token string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return nil
	}

	// Conditional on the token so logout cannot revoke a session that
	// already superseded this one. Zero rows is fine: logout is
	// idempotent.
	const q = `
UPDATE users
SET refresh_token = NULL
WHERE id = $1 AND refresh_token = $2;
`
	if _, err := r.db.ExecContext(ctx, q, userID, token); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
