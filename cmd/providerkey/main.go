package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra/credentials"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/shopify"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag      string
		providerFlag string
		domainFlag   string
	)
	flag.StringVar(&keyFlag, "key", "", "API token for the selected provider (falls back to environment)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderPrintful, "provider to configure ("+strings.Join(credentials.Providers, " or ")+")")
	flag.StringVar(&domainFlag, "store-domain", "", "Shopify store domain recorded with the token (falls back to SHOPIFY_STORE_DOMAIN)")
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	switch provider {
	case credentials.ProviderPrintful, credentials.ProviderShopify:
	case "":
		provider = credentials.ProviderPrintful
	default:
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	props := map[string]any{"source": "providerkey"}
	switch provider {
	case credentials.ProviderShopify:
		if key == "" {
			key = strings.TrimSpace(os.Getenv("SHOPIFY_ADMIN_API_TOKEN"))
		}
		storeDomain := strings.TrimSpace(domainFlag)
		if storeDomain == "" {
			storeDomain = strings.TrimSpace(os.Getenv("SHOPIFY_STORE_DOMAIN"))
		}
		if storeDomain != "" {
			props["shop"] = shopify.ShopName(storeDomain)
		}
	default:
		if key == "" {
			key = strings.TrimSpace(os.Getenv("PRINTFUL_API_KEY"))
		}
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s token is required via -key or environment\n", provider)
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "providerkey").Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	if err := store.SetToken(ctx, provider, key, props); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s token: %v\n", provider, err)
		os.Exit(1)
	}
	fmt.Printf("%s token stored successfully\n", provider)
}
