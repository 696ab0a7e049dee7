package printful

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
)

// TaskFetcher reads the state of an asynchronous render. *Client implements it.
type TaskFetcher interface {
	TaskStatus(ctx context.Context, taskKey string) (*Task, error)
}

// Poller resolves task keys into finished mockup URLs.
type Poller struct {
	fetcher TaskFetcher
	logger  *infra.Logger
	sleep   SleepFunc
}

// NewPoller builds a poller. Nil logger and sleep fall back to a discard
// logger and a context-aware timer.
func NewPoller(fetcher TaskFetcher, logger *infra.Logger, sleep SleepFunc) *Poller {
	if sleep == nil {
		sleep = infra.SleepContext
	}
	return &Poller{fetcher: fetcher, logger: infra.LoggerOrDiscard(logger), sleep: sleep}
}

// PollUntilComplete polls taskKey up to maxAttempts times, sleeping interval
// after every attempt that did not reach a terminal state.
//
// Errors from individual polls are logged and count as an attempt. When the
// final attempt fails, its error is returned wrapped together with
// domain.ErrPollTimeout. Provider rejections and missing credentials end
// polling at once since retrying cannot fix them.
func (p *Poller) PollUntilComplete(ctx context.Context, taskKey string, maxAttempts int, interval time.Duration) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	ctx, span := tracer.Start(ctx, "printful_poll_task", trace.WithAttributes(
		attribute.String("printful.task_key", taskKey),
		attribute.Int("printful.max_attempts", maxAttempts),
	))
	mockupURL, err := p.poll(ctx, span, taskKey, maxAttempts, interval)
	infra.EndSpan(span, err)
	return mockupURL, err
}

func (p *Poller) poll(ctx context.Context, span trace.Span, taskKey string, maxAttempts int, interval time.Duration) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		span.SetAttributes(attribute.Int("printful.poll_attempts", attempt))
		task, err := p.fetcher.TaskStatus(ctx, taskKey)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			if errors.Is(err, domain.ErrProviderRejected) || errors.Is(err, domain.ErrMissingCredentials) {
				return "", fmt.Errorf("printful: poll task %s: %w", taskKey, err)
			}
			lastErr = err
			p.logger.Warn().Err(err).Str("task_key", taskKey).Int("attempt", attempt).Msg("printful: poll attempt failed")
		case task.Status == TaskStatusFailed:
			reason := task.Error
			if reason == "" {
				reason = "no reason given"
			}
			return "", fmt.Errorf("printful: task %s: %s: %w", taskKey, reason, domain.ErrTaskFailed)
		default:
			if u := SelectMockupURL(task.Mockups); u != "" {
				p.logger.Debug().Str("task_key", taskKey).Int("attempt", attempt).Msg("printful: task completed")
				return u, nil
			}
			lastErr = nil
			p.logger.Debug().Str("task_key", taskKey).Str("status", task.Status).Int("attempt", attempt).Msg("printful: task pending")
		}
		if attempt == maxAttempts {
			break
		}
		if err := p.sleep(ctx, interval); err != nil {
			return "", err
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("printful: task %s: %w after %d attempts: %w", taskKey, domain.ErrPollTimeout, maxAttempts, lastErr)
	}
	return "", fmt.Errorf("printful: task %s: %w after %d attempts", taskKey, domain.ErrPollTimeout, maxAttempts)
}
