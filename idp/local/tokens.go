package local

import (
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// accessClaims follows the shape of a GoTrue access token.
type accessClaims struct {
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwtlib.RegisteredClaims
}

type tokenIssuer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

func (t *tokenIssuer) create(u *user, expiresAt time.Time) (string, error) {
	claims := accessClaims{
		Email: u.email,
		Role:  "authenticated",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   u.id,
			Audience:  jwtlib.ClaimStrings{"authenticated"},
			IssuedAt:  jwtlib.NewNumericDate(t.now()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        uuid.New().String(), // for revocation
		},
	}
	if u.fullName != "" {
		claims.UserMetadata = map[string]any{"full_name": u.fullName}
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// parse verifies signature, issuer and expiry.
func (t *tokenIssuer) parse(raw string) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwtlib.ParseWithClaims(raw, claims, t.verificationKey,
		jwtlib.WithIssuer(t.issuer),
		jwtlib.WithTimeFunc(t.now),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT: %w", err)
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("invalid JWT: missing claims")
	}
	return claims, nil
}

func (t *tokenIssuer) verificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return t.key, nil
}

// revokedTokens holds the jti of signed-out access tokens until they expire.
type revokedTokens struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

func newRevokedTokens() *revokedTokens {
	return &revokedTokens{revoked: make(map[string]time.Time)}
}

func (c *revokedTokens) add(jti string, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
}

func (c *revokedTokens) isRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

func (c *revokedTokens) cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}
