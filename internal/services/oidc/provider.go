package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
)

// Provider manages OIDC provider configuration
type Provider struct {
	repo *database.OIDCConfigRepository
}

// NewProvider creates a new OIDC provider manager
func NewProvider(repo *database.OIDCConfigRepository) *Provider {
	return &Provider{repo: repo}
}

// GetConfig retrieves OIDC configuration for a provider
func (p *Provider) GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error) {
	config, err := p.repo.GetByProvider(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}
	return config, nil
}

// LoginConfig contains OIDC login configuration for frontend
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// GetLoginConfig returns the configuration needed for frontend OIDC login.
// Endpoints come from the discovery document when reachable, otherwise
// they are constructed from the issuer using the provider's conventions.
func (p *Provider) GetLoginConfig(ctx context.Context, providerName string) (*LoginConfig, error) {
	config, err := p.GetConfig(ctx, providerName)
	if err != nil {
		return nil, err
	}

	var authEndpoint, tokenEndpoint string

	discoveryURL := strings.TrimSuffix(config.Issuer, "/") + "/.well-known/openid-configuration"
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err == nil {
		if resp, err := client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				var discovery struct {
					AuthorizationEndpoint string `json:"authorization_endpoint"`
					TokenEndpoint         string `json:"token_endpoint"`
				}
				if err := json.NewDecoder(resp.Body).Decode(&discovery); err == nil {
					authEndpoint = discovery.AuthorizationEndpoint
					tokenEndpoint = discovery.TokenEndpoint
				}
			}
			resp.Body.Close()
		}
	}

	if authEndpoint == "" || tokenEndpoint == "" {
		base := strings.TrimSuffix(config.Issuer, "/")
		if config.Domain != nil && *config.Domain != "" {
			domain := *config.Domain
			if !strings.HasPrefix(domain, "https://") {
				domain = "https://" + domain
			}
			base = strings.TrimSuffix(domain, "/")
		}
		// Supabase exposes GoTrue endpoints directly under the issuer
		if strings.Contains(config.Issuer, "supabase") {
			authEndpoint = base + "/authorize"
			tokenEndpoint = base + "/token"
		} else {
			authEndpoint = base + "/oauth2/authorize"
			tokenEndpoint = base + "/oauth2/token"
		}
	}

	return &LoginConfig{
		AuthorizationEndpoint: authEndpoint,
		TokenEndpoint:         tokenEndpoint,
		ClientID:              config.ClientID,
		RedirectURI:           config.RedirectURI,
		Scope:                 "openid email profile",
	}, nil
}
