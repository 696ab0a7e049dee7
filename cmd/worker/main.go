package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/adapter/repo"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/bootstrap"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra/credentials"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	catalog, err := bootstrap.Catalog(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to load catalog")
	}
	orchestrator, err := bootstrap.Orchestrator(ctx, cfg, credentials.NewStore(runner), catalog, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure mockup orchestrator")
	}

	w := worker.New(worker.Options{
		Queue:        repo.NewUploadRepository(runner),
		Mockups:      orchestrator,
		PollInterval: cfg.WorkerPollInterval,
		Logger:       &logger,
	})
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
