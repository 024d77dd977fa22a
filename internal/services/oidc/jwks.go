package oidc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSManager caches JWKS documents per URL. URLs are registered with the
// underlying jwk.Cache lazily on first use, so misconfigured providers never
// schedule a refresh loop.
type JWKSManager struct {
	cache      *jwk.Cache
	mu         sync.Mutex
	registered map[string]bool
}

// NewJWKSManager creates a JWKS manager with background refresh
func NewJWKSManager() *JWKSManager {
	return &JWKSManager{
		cache:      jwk.NewCache(context.Background(), jwk.WithRefreshWindow(5*time.Minute)),
		registered: make(map[string]bool),
	}
}

// GetJWKS returns the key set for the given JWKS URL. The first call fetches
// the document; later calls serve the cached set until the refresh interval
// elapses.
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.Lock()
	if !m.registered[jwksURL] {
		if err := m.cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
		}
		m.registered[jwksURL] = true
	}
	m.mu.Unlock()

	keys, err := m.cache.Get(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	return keys, nil
}
