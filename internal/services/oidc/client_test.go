package oidc

import (
	"strings"
	"testing"

	"github.com/studyflow/studyflow-api/internal/models"
)

func stringPtr(s string) *string { return &s }

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		oidcConfig *models.OIDCConfig
		wantSecret string
		wantAuth   string
	}{
		{
			name: "with client secret",
			oidcConfig: &models.OIDCConfig{
				ClientID:     "test-client-id",
				ClientSecret: stringPtr("test-secret"),
				RedirectURI:  "http://localhost:3000/callback",
				Issuer:       "https://auth.example.com",
			},
			wantSecret: "test-secret",
			wantAuth:   "https://auth.example.com/oauth2/authorize",
		},
		{
			name: "public client without secret",
			oidcConfig: &models.OIDCConfig{
				ClientID:    "test-client-id",
				RedirectURI: "http://localhost:3000/callback",
				Issuer:      "https://auth.example.com",
			},
			wantSecret: "",
			wantAuth:   "https://auth.example.com/oauth2/authorize",
		},
		{
			name: "supabase issuer uses gotrue endpoints",
			oidcConfig: &models.OIDCConfig{
				ClientID:    "test-client-id",
				RedirectURI: "http://localhost:3000/callback",
				Issuer:      "https://abc.supabase.co/auth/v1",
			},
			wantSecret: "",
			wantAuth:   "https://abc.supabase.co/auth/v1/authorize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := NewClient(tt.oidcConfig)
			if client == nil || client.config == nil {
				t.Fatal("NewClient returned nil client or config")
			}
			if client.config.ClientID != tt.oidcConfig.ClientID {
				t.Errorf("ClientID = %q, want %q", client.config.ClientID, tt.oidcConfig.ClientID)
			}
			if client.config.ClientSecret != tt.wantSecret {
				t.Errorf("ClientSecret = %q, want %q", client.config.ClientSecret, tt.wantSecret)
			}
			if client.config.Endpoint.AuthURL != tt.wantAuth {
				t.Errorf("AuthURL = %q, want %q", client.config.Endpoint.AuthURL, tt.wantAuth)
			}
		})
	}
}

func TestClient_AuthCodeURL(t *testing.T) {
	t.Parallel()

	client := NewClient(&models.OIDCConfig{
		ClientID:    "test-client-id",
		RedirectURI: "http://localhost:3000/callback",
		Issuer:      "https://auth.example.com",
	})

	url := client.AuthCodeURL("test-state-123")

	if url == "" {
		t.Fatal("AuthCodeURL returned empty string")
	}
	if !strings.Contains(url, "state=test-state-123") {
		t.Errorf("AuthCodeURL missing state parameter: %s", url)
	}
	if !strings.Contains(url, "client_id=test-client-id") {
		t.Errorf("AuthCodeURL missing client_id parameter: %s", url)
	}
}
