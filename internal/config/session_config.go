package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultRefreshInterval = 50 * time.Minute // access tokens typically live for an hour

// Session holds the client session settings.
type Session struct {
	RefreshInterval time.Duration `env:"SESSION_REFRESH_INTERVAL" envDefault:"50m"`
}

var _ SessionConfig = Session{}

// LoadSession reads the session settings from the environment.
func LoadSession() (Session, error) {
	var s Session
	if err := env.Parse(&s); err != nil {
		return Session{}, fmt.Errorf("parse session env: %w", err)
	}
	return s, nil
}

func (s Session) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return DefaultRefreshInterval
	}
	return s.RefreshInterval
}
