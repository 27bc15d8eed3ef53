package local

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/skillup-auth/internal/errors"
)

const refreshTokenLength = 32

type storedRefreshToken struct {
	userID string
	iat    time.Time
}

// refreshManager issues opaque refresh tokens. Tokens are single use.
type refreshManager struct {
	tokens map[string]storedRefreshToken
	mu     sync.Mutex
	now    func() time.Time
}

func newRefreshManager(now func() time.Time) *refreshManager {
	return &refreshManager{
		tokens: make(map[string]storedRefreshToken),
		now:    now,
	}
}

func (m *refreshManager) create(userID string) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = storedRefreshToken{userID: userID, iat: m.now()}
	return token, nil
}

// consume deletes the token and returns the user it was issued to.
func (m *refreshManager) consume(token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tokens[token]
	if !ok {
		return "", errors.ErrInvalidRefreshToken
	}
	delete(m.tokens, token)
	return stored.userID, nil
}

// deleteForUser revokes every refresh token of a user (global sign-out).
func (m *refreshManager) deleteForUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, stored := range m.tokens {
		if stored.userID == userID {
			delete(m.tokens, token)
		}
	}
}
