package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
)

// NewOIDCCmd creates the OIDC configuration command
func NewOIDCCmd() *cobra.Command {
	var issuer, domain, clientID, clientSecret, redirectURI, jwksURL string

	cmd := &cobra.Command{
		Use:   "oidc <provider-name>",
		Short: "Configure OIDC provider",
		Long:  "Configure an OIDC provider for authentication. Provider name can be any identifier (e.g. 'supabase', 'cognito', 'auth0')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}
			if issuer == "" || clientID == "" || redirectURI == "" {
				return fmt.Errorf("required flags: --issuer, --client-id, --redirect-uri (--client-secret is optional for public clients)")
			}

			db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			// Default JWKS location per the OIDC discovery convention. Supabase
			// serves it from the same path under the auth issuer.
			if jwksURL == "" {
				jwksURL = issuer + "/.well-known/jwks.json"
			}

			oidcRepo := database.NewOIDCConfigRepository(db)
			ctx := context.Background()

			existing, err := oidcRepo.GetByProvider(ctx, provider)
			if err == nil && existing != nil {
				applyOIDCFlags(existing, issuer, domain, clientID, clientSecret, redirectURI, jwksURL)
				if err := oidcRepo.Update(ctx, existing); err != nil {
					return fmt.Errorf("failed to update OIDC config: %w", err)
				}
				fmt.Printf("Updated OIDC configuration for provider: %s\n", provider)
				return nil
			}

			oidcConfig := &models.OIDCConfig{
				ID:       uuid.New(),
				Provider: provider,
			}
			applyOIDCFlags(oidcConfig, issuer, domain, clientID, clientSecret, redirectURI, jwksURL)
			if err := oidcRepo.Create(ctx, oidcConfig); err != nil {
				return fmt.Errorf("failed to create OIDC config: %w", err)
			}
			fmt.Printf("Created OIDC configuration for provider: %s\n", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "OIDC issuer URL (required, e.g. https://<project>.supabase.co/auth/v1)")
	cmd.Flags().StringVar(&domain, "domain", "", "OAuth2 domain override (optional)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (optional for public clients)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI (required)")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL (optional, derived from issuer when omitted)")

	return cmd
}

func applyOIDCFlags(c *models.OIDCConfig, issuer, domain, clientID, clientSecret, redirectURI, jwksURL string) {
	c.Issuer = issuer
	c.ClientID = clientID
	c.RedirectURI = redirectURI

	if domain != "" {
		c.Domain = &domain
	} else {
		c.Domain = nil
	}
	if clientSecret != "" {
		c.ClientSecret = &clientSecret
	} else {
		c.ClientSecret = nil
	}
	c.JWKSUrl = &jwksURL
}
