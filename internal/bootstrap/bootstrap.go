// Package bootstrap builds the long-lived services shared by the API and
// worker binaries from an infra.Config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra/credentials"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/printful"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/shopify"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/sqlinline"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/storage"
)

// Catalog returns the built-in catalog with the optional override file applied.
func Catalog(cfg *infra.Config) (*mockup.Catalog, error) {
	base := mockup.DefaultCatalog()
	if strings.TrimSpace(cfg.CatalogFile) == "" {
		return base, nil
	}
	return mockup.LoadCatalogFile(cfg.CatalogFile, base)
}

// Orchestrator wires the Printful client, task poller and pacer. A missing
// API key is not fatal: every render then fails with ErrMissingCredentials.
func Orchestrator(ctx context.Context, cfg *infra.Config, creds *credentials.Store, catalog *mockup.Catalog, logger *infra.Logger) (*mockup.Orchestrator, error) {
	logger = infra.LoggerOrDiscard(logger)
	apiKey, err := creds.Resolve(ctx, credentials.ProviderPrintful, cfg.PrintfulAPIKey)
	if err != nil {
		if !errors.Is(err, domain.ErrMissingCredentials) {
			return nil, err
		}
		logger.Warn().Msg("printful api key missing, mockup generation will fail until one is configured")
	}
	client, err := printful.NewClient(printful.Options{
		APIKey:         apiKey,
		BaseURL:        cfg.PrintfulBaseURL,
		MaxAttempts:    cfg.PrintfulMaxAttempts,
		RateLimitWait:  cfg.PrintfulRateLimitWait,
		NetworkBackoff: cfg.PrintfulNetworkBackoff,
		HTTPClient:     &http.Client{Timeout: 60 * time.Second},
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	return mockup.NewOrchestrator(mockup.Options{
		Catalog:      catalog,
		Submitter:    client,
		Poller:       printful.NewPoller(client, logger, nil),
		Pacer:        mockup.NewPacer(cfg.MockupPacing, cfg.MockupProductDelay),
		PollAttempts: cfg.MockupPollAttempts,
		PollInterval: cfg.MockupPollInterval,
		Logger:       logger,
	})
}

// Storefront returns the Shopify client, or nil when no store is configured.
func Storefront(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger *infra.Logger) (*shopify.Client, error) {
	if strings.TrimSpace(cfg.ShopifyStoreDomain) == "" {
		return nil, nil
	}
	logger = infra.LoggerOrDiscard(logger)
	token, err := creds.Resolve(ctx, credentials.ProviderShopify, cfg.ShopifyAdminAPIToken)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			logger.Warn().Str("store", cfg.ShopifyStoreDomain).Msg("shopify token missing, storefront listing disabled")
			return nil, nil
		}
		return nil, err
	}
	return shopify.NewClient(shopify.Options{
		StoreDomain: cfg.ShopifyStoreDomain,
		AccessToken: token,
		APIVersion:  cfg.ShopifyAPIVersion,
		Logger:      logger,
	})
}

// Storage returns the configured blob store. For the filesystem driver the
// second value is the directory to serve under /static.
func Storage(ctx context.Context, cfg *infra.Config) (storage.Store, string, error) {
	switch cfg.StorageDriver {
	case infra.StorageDriverMinIO:
		store, err := storage.NewMinIOStore(ctx, storage.MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		path := cfg.StoragePath
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		store, err := storage.NewFileStore(path, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.BasePath(), nil
	}
}

// Migrate creates the tables used by the service when they do not exist.
func Migrate(ctx context.Context, sql infra.SQLExecutor) error {
	for _, stmt := range sqlinline.Schema {
		if _, err := sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap: migrate: %w", err)
		}
	}
	return nil
}
