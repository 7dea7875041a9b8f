package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every reason a bearer token is refused.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenType separates short-lived access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

/* ============================== JWT Claims ============================== */

// Claims is the JWT payload we issue and expect. sub, jti, iat, nbf and exp
// live in RegisteredClaims.
type Claims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a uuid.
func (c *Claims) UserID() (uuid.UUID, error) { return uuid.Parse(c.Subject) }

/* =============================== Authority ============================== */

// Authority issues, validates and revokes HS256 tokens.
type Authority struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    RevocationStore
	now        func() time.Time
}

func NewAuthority(secret string, accessTTL, refreshTTL time.Duration, revoked RevocationStore) *Authority {
	return &Authority{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		now:        time.Now,
	}
}

func (a *Authority) IssueAccessToken(userID uuid.UUID) (string, error) {
	return a.issue(userID, AccessToken, a.accessTTL)
}

func (a *Authority) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return a.issue(userID, RefreshToken, a.refreshTTL)
}

func (a *Authority) issue(userID uuid.UUID, typ TokenType, ttl time.Duration) (string, error) {
	now := a.now()
	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.secret)
}

// Validate accepts only unexpired, unrevoked access tokens.
func (a *Authority) Validate(ctx context.Context, token string) (*Claims, error) {
	return a.check(ctx, token, AccessToken)
}

// RefreshAccess trades a valid refresh token for a new access token.
func (a *Authority) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := a.check(ctx, refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}
	id, _ := claims.UserID()
	return a.IssueAccessToken(id)
}

// Revoke records the token's jti. Repeating it is a no-op.
func (a *Authority) Revoke(ctx context.Context, token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return err
	}
	return a.revoked.Revoke(ctx, claims.ID, a.now())
}

func (a *Authority) check(ctx context.Context, token string, want TokenType) (*Claims, error) {
	claims, err := a.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrInvalidToken
	}
	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: revocation lookup: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// parse verifies signature, algorithm and time claims.
func (a *Authority) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
