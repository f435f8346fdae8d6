// Package auth issues and verifies the bearer tokens that identify callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sociopedia/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config carries the signing parameters for Tokens.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	// TTL bounds token lifetime. Zero issues tokens without an exp claim.
	TTL time.Duration
}

// RevocationStore records revoked token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims is the verified content of a token.
type Claims struct {
	UserID    uint
	ID        string
	ExpiresAt time.Time
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	cfg     Config
	revoked RevocationStore
	now     func() time.Time
}

// NewTokens returns a Tokens for cfg. revoked may be nil, in which case
// revocation is neither recorded nor checked.
func NewTokens(cfg Config, revoked RevocationStore) *Tokens {
	return &Tokens{cfg: cfg, revoked: revoked, now: time.Now}
}

// Issue signs a token whose subject is userID.
func (t *Tokens) Issue(userID uint) (string, error) {
	if t.cfg.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    t.cfg.Issuer,
		Audience:  jwt.ClaimStrings{t.cfg.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	if t.cfg.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.cfg.TTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.Secret))
}

// BearerToken strips an optional, case-insensitive "Bearer" prefix from an
// Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") {
		rest := header[6:]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return header
}

// Verify validates an Authorization header value and returns its claims.
// Every failure is an UNAUTHORIZED AppError.
func (t *Tokens) Verify(ctx context.Context, header string) (*Claims, error) {
	raw := BearerToken(header)
	if raw == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}

	var registered jwt.RegisteredClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	if t.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.cfg.Audience))
	}

	token, err := jwt.ParseWithClaims(raw, &registered, func(_ *jwt.Token) (any, error) {
		return []byte(t.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.NewUnauthorizedError("Token has expired")
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, models.NewUnauthorizedError("Invalid token issuer")
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, models.NewUnauthorizedError("Invalid token audience")
		}
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	userID, err := strconv.ParseUint(registered.Subject, 10, strconv.IntSize)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	claims := &Claims{UserID: uint(userID), ID: registered.ID}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}

	if t.revoked != nil && claims.ID != "" {
		revoked, err := t.revoked.IsRevoked(ctx, claims.ID)
		if err == nil && revoked {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return claims, nil
}

// Revoke marks the token described by claims as revoked until it would have
// expired. Tokens without exp are revoked for fallback.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims, fallback time.Duration) error {
	if t.revoked == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := fallback
	if !claims.ExpiresAt.IsZero() {
		ttl = claims.ExpiresAt.Sub(t.now())
		if ttl <= 0 {
			return nil
		}
	}
	if err := t.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
