// Package worker drains queued mockup jobs.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"
)

// Generator renders mockups for an image. *mockup.Orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, imageURL string, keys []string) (*mockup.Result, error)
}

// Options configures a Worker.
type Options struct {
	Queue        domain.MockupJobQueue
	Mockups      Generator
	PollInterval time.Duration
	Logger       *infra.Logger
	Sleep        func(ctx context.Context, d time.Duration) error
}

// Worker claims one queued upload at a time and records the outcome.
type Worker struct {
	queue        domain.MockupJobQueue
	mockups      Generator
	pollInterval time.Duration
	logger       *infra.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Worker {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = infra.SleepContext
	}
	return &Worker{
		queue:        opts.Queue,
		mockups:      opts.Mockups,
		pollInterval: interval,
		logger:       infra.LoggerOrDiscard(opts.Logger),
		sleep:        sleep,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		processed, err := w.ProcessNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("worker: failed to process job")
		}
		if processed && err == nil {
			continue
		}
		if err := w.sleep(ctx, w.pollInterval); err != nil {
			return err
		}
	}
}

// ProcessNext claims and runs a single job. It reports false when the queue
// was empty.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	log := w.logger.With().Str("job_id", job.ID).Strs("products", job.RequestedProducts).Logger()
	log.Info().Msg("worker: picked job")

	res, err := w.mockups.Generate(ctx, job.OriginalImageURL, job.RequestedProducts)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		if ctx.Err() != nil {
			// Claimed records are never picked up again, so close it out even
			// though the worker is stopping.
			if ferr := w.queue.Fail(context.WithoutCancel(ctx), job.ID, "worker stopped before the job finished", nil); ferr != nil {
				log.Error().Err(ferr).Msg("worker: failed to record interrupted job")
			}
			return true, ctx.Err()
		}
		log.Warn().Err(err).Str("kind", domain.ErrorKind(err)).Msg("worker: job failed")
		msg := err.Error()
		var failures map[string]string
		if res != nil {
			msg = domain.ErrNoMockups.Error()
			failures = res.FailureMessages()
		}
		if ferr := w.queue.Fail(ctx, job.ID, msg, failures); ferr != nil {
			return true, ferr
		}
		return true, nil
	}
	if err := w.queue.Complete(ctx, job.ID, res.URLs(), res.FailureMessages()); err != nil {
		return true, err
	}
	log.Info().Int("mockups", len(res.Mockups)).Int("failures", len(res.Failures)).Msg("worker: job succeeded")
	return true, nil
}
