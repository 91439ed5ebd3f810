package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/streamview/auth-service/internal/application/session"
	"github.com/streamview/auth-service/internal/domain"
)

// JWTSigner signs and verifies both token kinds. The two kinds use
// distinct secrets: leaking the access-token signing capability must not
// allow forging refresh tokens.
type JWTSigner struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

func NewJWTSigner(accessSecret, refreshSecret, issuer string) *JWTSigner {
	return &JWTSigner{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) sign(secret []byte, userID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) verify(secret []byte, token string) (session.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return session.TokenClaims{}, domain.ErrTokenExpired()
		}
		return session.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return session.TokenClaims{}, domain.ErrTokenInvalid()
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return session.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Exp:    exp,
	}, nil
}

func (s *JWTSigner) SignAccessToken(userID, email, role string, ttl time.Duration) (string, error) {
	return s.sign(s.accessSecret, userID, email, role, ttl)
}

func (s *JWTSigner) SignRefreshToken(userID, email, role string, ttl time.Duration) (string, error) {
	return s.sign(s.refreshSecret, userID, email, role, ttl)
}

func (s *JWTSigner) VerifyAccessToken(token string) (session.TokenClaims, error) {
	return s.verify(s.accessSecret, token)
}

func (s *JWTSigner) VerifyRefreshToken(token string) (session.TokenClaims, error) {
	return s.verify(s.refreshSecret, token)
}
