package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/adapter/repo"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/bootstrap"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/http/handlers"
	httpapi "github.com/LDFINA01/Jokester-Merch-Generator/internal/http/httpapi"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra/credentials"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra/geoip"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/listing"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/middleware"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/transcoder"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	if cfg.AutoMigrate {
		if err := bootstrap.Migrate(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("schema bootstrap failed")
		}
	}
	creds := credentials.NewStore(runner)
	uploads := repo.NewUploadRepository(runner)

	catalog, err := bootstrap.Catalog(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	orchestrator, err := bootstrap.Orchestrator(ctx, cfg, creds, catalog, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure mockup orchestrator")
	}
	store, staticDir, err := bootstrap.Storage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	app := &handlers.App{
		Uploads:         uploads,
		Jobs:            uploads,
		Mockups:         orchestrator,
		Storage:         store,
		Catalog:         catalog,
		DefaultProducts: cfg.MockupDefaultProducts,
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
		Logger:          &logger,
	}

	storefront, err := bootstrap.Storefront(ctx, cfg, creds, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storefront")
	}
	if storefront != nil {
		app.Listings = listing.NewService(uploads, storefront, catalog, &logger)
	}

	if cfg.TranscoderURL != "" {
		app.Transcoder = transcoder.NewClient(transcoder.Options{
			URL:     cfg.TranscoderURL,
			Timeout: cfg.TranscoderTimeout,
			Logger:  &logger,
		})
	}

	var countryLookup middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable, country detection limited to proxy headers")
		} else {
			defer resolver.Close()
			countryLookup = geoip.LookupFunc(resolver)
		}
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		TrustProxy:      cfg.TrustProxyHeaders,
		CountryLookup:   countryLookup,
		StaticDir:       staticDir,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("storage", cfg.StorageDriver).Bool("storefront", app.Listings != nil).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
