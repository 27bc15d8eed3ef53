package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	ProviderConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type SessionConfig interface {
	GetRefreshInterval() time.Duration
}

type ProviderConfig interface {
	GetProvider() Provider
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	provider Provider
}

func (c mainConfig) GetProvider() Provider {
	return c.provider
}

// New loads an optional .env file, then reads the process environment.
func New() (Config, error) {
	_ = godotenv.Load()

	provider, err := loadProvider()
	if err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	session, err := LoadSession()
	if err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	return mainConfig{Session: session, provider: provider}, nil
}
