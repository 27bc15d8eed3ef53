package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type ProviderKind string

const (
	ProviderGoTrue ProviderKind = "gotrue"
	ProviderOIDC   ProviderKind = "oidc"
	ProviderLocal  ProviderKind = "local"
)

// Provider holds the identity provider settings. Only the block matching Kind is used.
type Provider struct {
	Kind ProviderKind `env:"IDP_KIND" envDefault:"local"`

	// Timeout bounds every provider call. Zero means no timeout.
	Timeout time.Duration `env:"IDP_TIMEOUT" envDefault:"0s"`

	// GoTrue / Supabase
	URL        string `env:"IDP_URL"`
	AnonKey    string `env:"IDP_ANON_KEY"`
	ServiceKey string `env:"IDP_SERVICE_KEY"`

	// Generic OIDC
	OIDCIssuer          string   `env:"OIDC_ISSUER"`
	OIDCClientID        string   `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret    string   `env:"OIDC_CLIENT_SECRET"`
	OIDCRegistrationURL string   `env:"OIDC_REGISTRATION_URL"`
	OIDCRevocationURL   string   `env:"OIDC_REVOCATION_URL"`
	OIDCScopes          []string `env:"OIDC_SCOPES" envSeparator:"," envDefault:"openid,profile,email,offline_access"`

	// Local development provider
	LocalSigningKey     string        `env:"LOCAL_SIGNING_KEY"`
	LocalAccessTokenTTL time.Duration `env:"LOCAL_ACCESS_TOKEN_TTL" envDefault:"1h"`
}

func loadProvider() (Provider, error) {
	var p Provider
	if err := env.Parse(&p); err != nil {
		return Provider{}, fmt.Errorf("parse provider env: %w", err)
	}
	return p, p.Validate()
}

// Validate checks that the settings required by the selected provider are present.
func (p Provider) Validate() error {
	switch p.Kind {
	case ProviderGoTrue:
		if p.URL == "" || p.ServiceKey == "" {
			return fmt.Errorf("IDP_URL and IDP_SERVICE_KEY are required for the %s provider", p.Kind)
		}
	case ProviderOIDC:
		if p.OIDCIssuer == "" || p.OIDCClientID == "" {
			return fmt.Errorf("OIDC_ISSUER and OIDC_CLIENT_ID are required for the %s provider", p.Kind)
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("unknown IDP_KIND %q", p.Kind)
	}
	return nil
}

// PublicURL is the provider address that is safe to hand to browsers.
func (p Provider) PublicURL() string {
	switch p.Kind {
	case ProviderGoTrue:
		return p.URL
	case ProviderOIDC:
		return p.OIDCIssuer
	}
	return ""
}
