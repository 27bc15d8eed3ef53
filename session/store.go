package session

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/skillup-auth/client"
	"github.com/jrsteele09/skillup-auth/internal/errors"
)

// Storage keys
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Store reads and writes the signed-in session in a KV.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// SaveSession writes both tokens and the user profile. The writes are not
// atomic; a partial session is overwritten by the next login.
func (s *Store) SaveSession(ctx context.Context, res *client.LoginResult) error {
	user, err := json.Marshal(res.User)
	if err != nil {
		return errors.Wrapf(err, "[SaveSession] encode user")
	}
	if err := s.kv.Set(ctx, KeyAccessToken, res.Session.AccessToken); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyRefreshToken, res.Session.RefreshToken); err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyUser, string(user))
}

// UpdateTokens replaces the tokens after a refresh, keeping the stored user.
func (s *Store) UpdateTokens(ctx context.Context, session client.Session) error {
	if err := s.kv.Set(ctx, KeyAccessToken, session.AccessToken); err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyRefreshToken, session.RefreshToken)
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.nonEmpty(ctx, KeyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.nonEmpty(ctx, KeyRefreshToken)
}

func (s *Store) User(ctx context.Context) (*client.User, error) {
	raw, err := s.nonEmpty(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	var u client.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, errors.Wrapf(err, "[Store.User] decode user")
	}
	return &u, nil
}

// IsAuthenticated reports whether an access token and a user are stored. It does
// not check whether the token has expired.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	if _, err := s.AccessToken(ctx); err != nil {
		return false
	}
	_, err := s.User(ctx)
	return err == nil
}

// Clear removes every session key. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// nonEmpty treats an empty stored value as absent.
func (s *Store) nonEmpty(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}
