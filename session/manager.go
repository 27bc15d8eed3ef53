package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/skillup-auth/client"
	"github.com/jrsteele09/skillup-auth/internal/config"
	"github.com/jrsteele09/skillup-auth/internal/errors"
	"github.com/jrsteele09/skillup-auth/validation"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// API is the part of the gateway client the manager uses. *client.Client implements it.
type API interface {
	Register(ctx context.Context, req client.RegisterRequest) (*client.User, error)
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*client.Session, error)
	Me(ctx context.Context, accessToken string) (*client.User, error)
}

var _ API = (*client.Client)(nil)

// RegistrationForm is what a sign-up form collects.
type RegistrationForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeTerms      bool
}

// Manager owns a client session: its store, its API client and the timer that
// keeps the access token fresh. Create one per signed-in process.
type Manager struct {
	api      API
	store    *Store
	interval time.Duration
	onLogout func()

	refreshes singleflight.Group

	mu   sync.Mutex
	stop context.CancelFunc
	done chan struct{}
}

type ManagerOption func(*Manager)

func WithRefreshInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithOnLogout registers a callback run after every logout, including the
// forced logout that follows a failed refresh.
func WithOnLogout(fn func()) ManagerOption {
	return func(m *Manager) {
		m.onLogout = fn
	}
}

func NewManager(api API, store *Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		api:      api,
		store:    store,
		interval: config.DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the periodic refresh. Calling Start on a running manager does nothing.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.stop = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
}

// Close stops the periodic refresh and waits for an in-progress tick to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.store.IsAuthenticated(ctx) {
				continue
			}
			if _, err := m.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("[Manager] scheduled refresh failed")
			}
		}
	}
}

// Foreground is called when the application becomes visible again. It refreshes
// when a session exists.
func (m *Manager) Foreground(ctx context.Context) (bool, error) {
	if !m.store.IsAuthenticated(ctx) {
		return false, nil
	}
	return m.Refresh(ctx)
}

// Refresh exchanges the stored refresh token for new tokens. Concurrent callers
// share one request. Without a refresh token it does nothing and returns false.
// A rejected refresh logs the user out; a refresh cut short by ctx keeps the session.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	v, err, _ := m.refreshes.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	refreshed, _ := v.(bool)
	return refreshed, err
}

func (m *Manager) refresh(ctx context.Context) (bool, error) {
	refreshToken, err := m.store.RefreshToken(ctx)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	session, err := m.api.Refresh(ctx, refreshToken)
	if err != nil && ctx.Err() != nil {
		return false, errors.Wrapf(err, "[Manager.Refresh] interrupted")
	}
	if err != nil {
		log.Warn().Err(err).Msg("[Manager] token refresh failed, logging out")
		if lerr := m.Logout(ctx); lerr != nil {
			log.Err(lerr).Msg("[Manager] clear session after failed refresh")
		}
		return false, errors.Wrapf(err, "[Manager.Refresh] refresh")
	}
	if err := m.store.UpdateTokens(ctx, *session); err != nil {
		return false, errors.Wrapf(err, "[Manager.Refresh] store tokens")
	}
	return true, nil
}

// Login signs in and stores the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*client.User, error) {
	if err := validation.ClientEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &validation.Error{Field: validation.FieldPassword, Reason: "Password is required"}
	}

	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveSession(ctx, res); err != nil {
		return nil, errors.Wrapf(err, "[Manager.Login] save session")
	}
	return &res.User, nil
}

// Register validates the form and creates the account. It does not sign in.
func (m *Manager) Register(ctx context.Context, form RegistrationForm) (*client.User, error) {
	if err := validation.RegistrationForm(form.FullName, form.Email, form.Password, form.ConfirmPassword, form.AgreeTerms); err != nil {
		return nil, err
	}
	return m.api.Register(ctx, client.RegisterRequest{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
}

// Logout tells the gateway when a refresh token is held, then clears local
// state whatever the gateway answered. The OnLogout callback runs only once the
// local state is gone.
func (m *Manager) Logout(ctx context.Context) error {
	accessToken, _ := m.store.AccessToken(ctx)
	refreshToken, _ := m.store.RefreshToken(ctx)
	if refreshToken != "" {
		if err := m.api.Logout(ctx, accessToken, refreshToken); err != nil {
			log.Warn().Err(err).Msg("[Manager] gateway logout failed")
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		return errors.Wrapf(err, "[Manager.Logout] clear session")
	}
	if m.onLogout != nil {
		m.onLogout()
	}
	return nil
}

// CurrentUser asks the gateway who the stored token belongs to. Any failure yields nil.
func (m *Manager) CurrentUser(ctx context.Context) *client.User {
	accessToken, err := m.store.AccessToken(ctx)
	if err != nil {
		return nil
	}
	user, err := m.api.Me(ctx, accessToken)
	if err != nil {
		log.Debug().Err(err).Msg("[Manager] current user lookup failed")
		return nil
	}
	return user
}

// CachedUser is the profile saved at login, without a network call.
func (m *Manager) CachedUser(ctx context.Context) (*client.User, error) {
	return m.store.User(ctx)
}

func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.store.IsAuthenticated(ctx)
}
