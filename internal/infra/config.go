package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	DBMaxConns         int
	DBMinConns         int
	AutoMigrate        bool
	GeoIPDBPath        string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	TrustProxyHeaders  bool
	CORSAllowedOrigins []string

	PrintfulAPIKey         string
	PrintfulBaseURL        string
	PrintfulMaxAttempts    int
	PrintfulRateLimitWait  time.Duration
	PrintfulNetworkBackoff time.Duration
	MockupPollAttempts     int
	MockupPollInterval     time.Duration
	MockupProductDelay     time.Duration
	MockupPacing           string
	MockupDefaultProducts  []string
	CatalogFile            string
	ShopifyStoreDomain     string
	ShopifyAdminAPIToken   string
	ShopifyAPIVersion      string
	TranscoderURL          string
	TranscoderTimeout      time.Duration
	WorkerPollInterval     time.Duration

	StorageDriver  string
	StoragePath    string
	StorageBaseURL string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

const (
	PacingSequential  = "sequential"
	PacingTokenBucket = "token_bucket"

	StorageDriverFilesystem = "filesystem"
	StorageDriverMinIO      = "minio"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 1),
		AutoMigrate:        getEnvBool("AUTO_MIGRATE", false),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		PrintfulAPIKey:         os.Getenv("PRINTFUL_API_KEY"),
		PrintfulBaseURL:        getEnv("PRINTFUL_BASE_URL", "https://api.printful.com"),
		PrintfulMaxAttempts:    getEnvInt("PRINTFUL_MAX_ATTEMPTS", 3),
		PrintfulRateLimitWait:  time.Second * time.Duration(getEnvInt("PRINTFUL_RATE_LIMIT_WAIT_SECONDS", 30)),
		PrintfulNetworkBackoff: time.Second * time.Duration(getEnvInt("PRINTFUL_NETWORK_BACKOFF_SECONDS", 5)),
		MockupPollAttempts:     getEnvInt("MOCKUP_POLL_ATTEMPTS", 10),
		MockupPollInterval:     time.Millisecond * time.Duration(getEnvInt("MOCKUP_POLL_INTERVAL_MS", 2000)),
		MockupProductDelay:     time.Millisecond * time.Duration(getEnvInt("MOCKUP_PRODUCT_DELAY_MS", 3000)),
		MockupPacing:           strings.ToLower(getEnv("MOCKUP_PACING", PacingSequential)),
		MockupDefaultProducts:  getEnvList("MOCKUP_DEFAULT_PRODUCTS", []string{"mug", "shirt"}),
		CatalogFile:            os.Getenv("CATALOG_FILE"),
		ShopifyStoreDomain:     os.Getenv("SHOPIFY_STORE_DOMAIN"),
		ShopifyAdminAPIToken:   os.Getenv("SHOPIFY_ADMIN_API_TOKEN"),
		ShopifyAPIVersion:      getEnv("SHOPIFY_API_VERSION", "2024-01"),
		TranscoderURL:          os.Getenv("TRANSCODER_URL"),
		TranscoderTimeout:      time.Second * time.Duration(getEnvInt("TRANSCODER_TIMEOUT_SECONDS", 300)),
		WorkerPollInterval:     time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFilesystem)),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "mockups"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.DBMaxConns < 1 || cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS out of range (%d/%d)", cfg.DBMinConns, cfg.DBMaxConns)
	}

	switch cfg.MockupPacing {
	case PacingSequential, PacingTokenBucket:
	default:
		return nil, fmt.Errorf("MOCKUP_PACING must be %q or %q", PacingSequential, PacingTokenBucket)
	}

	switch cfg.StorageDriver {
	case StorageDriverFilesystem:
	case StorageDriverMinIO:
		if cfg.MinIOEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_DRIVER=minio")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
