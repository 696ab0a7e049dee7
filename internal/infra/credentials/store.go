package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/sqlinline"
)

const (
	ProviderPrintful = "printful"
	ProviderShopify  = "shopify"
)

// Providers lists every provider name accepted by the store.
var Providers = []string{ProviderPrintful, ProviderShopify}

// Store keeps provider API tokens in the integration_tokens table.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: load %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// Resolve prefers an explicitly configured token and falls back to the stored one.
func (s *Store) Resolve(ctx context.Context, provider, configured string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	if s == nil || s.sql == nil {
		return "", fmt.Errorf("credentials: %s: %w", provider, domain.ErrMissingCredentials)
	}
	token, err := s.Token(ctx, provider)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("credentials: %s: %w", provider, domain.ErrMissingCredentials)
	}
	return token, nil
}

// SetToken stores token for provider. props is kept alongside it, e.g. the shop domain.
func (s *Store) SetToken(ctx context.Context, provider, token string, props map[string]any) error {
	if !knownProvider(provider) {
		return fmt.Errorf("credentials: unknown provider %q", provider)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("credentials: %s token is required", provider)
	}
	return s.upsert(ctx, provider, token, props)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw); err != nil {
		return fmt.Errorf("credentials: store %s token: %w", provider, err)
	}
	return nil
}

func knownProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}
