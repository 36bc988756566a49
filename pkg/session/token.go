package session

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"jobportal/pkg/domain"
)

// TokenCodec signs and verifies the persisted session token. The token
// carries the whole identity so a restart can restore the session
// without a user-store read.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// NewTokenCodec builds an HS256 codec. A zero ttl defaults to 24h.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Sign encodes the identity as a signed token.
func (c *TokenCodec) Sign(id domain.Identity) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Name:  id.Name,
		Email: id.Email,
		Admin: id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify decodes a token. Malformed, mis-signed, or expired tokens
// simply yield ok=false; a stale session is absence, not a fault.
func (c *TokenCodec) Verify(token string) (domain.Identity, bool) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Identity{}, false
	}
	return domain.Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Admin:  claims.Admin,
	}, true
}
