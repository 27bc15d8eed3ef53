package server

import (
	"context"
	"fmt"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/idp/gotrue"
	"github.com/jrsteele09/skillup-auth/idp/local"
	"github.com/jrsteele09/skillup-auth/idp/oidc"
	"github.com/jrsteele09/skillup-auth/internal/config"
	"github.com/rs/zerolog/log"
)

// NewProvider builds the identity provider selected by configuration.
func NewProvider(ctx context.Context, cfg config.ProviderConfig) (idp.Provider, error) {
	pc := cfg.GetProvider()
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("[NewProvider] %w", err)
	}

	switch pc.Kind {
	case config.ProviderGoTrue:
		log.Info().Str("url", pc.URL).Msg("using GoTrue identity provider")
		return gotrue.New(pc.URL, pc.AnonKey, pc.ServiceKey), nil

	case config.ProviderOIDC:
		log.Info().Str("issuer", pc.OIDCIssuer).Msg("using OIDC identity provider")
		p, err := oidc.New(ctx, oidc.Config{
			Issuer:          pc.OIDCIssuer,
			ClientID:        pc.OIDCClientID,
			ClientSecret:    pc.OIDCClientSecret,
			RegistrationURL: pc.OIDCRegistrationURL,
			RevocationURL:   pc.OIDCRevocationURL,
			Scopes:          pc.OIDCScopes,
		})
		if err != nil {
			return nil, fmt.Errorf("[NewProvider] %w", err)
		}
		return p, nil

	default:
		log.Warn().Msg("using the in-memory local identity provider, accounts are lost on restart")
		p, err := local.New(
			local.WithSigningKey([]byte(pc.LocalSigningKey)),
			local.WithAccessTokenTTL(pc.LocalAccessTokenTTL),
		)
		if err != nil {
			return nil, fmt.Errorf("[NewProvider] %w", err)
		}
		return p, nil
	}
}
