package mockup

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
)

// Pacer spaces consecutive provider submissions. The orchestrator calls Wait
// once between each pair of consecutive products.
type Pacer interface {
	Wait(ctx context.Context) error
}

// SubmissionGate is implemented by pacers that must admit every provider
// submission, including the first one of a call. The orchestrator calls
// Before ahead of each submission in addition to the Wait calls between
// products.
type SubmissionGate interface {
	Before(ctx context.Context) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SequentialPacer waits a fixed delay every time.
type SequentialPacer struct {
	delay time.Duration
	sleep SleepFunc
}

// NewSequentialPacer returns a pacer sleeping delay per call. A nil sleep uses a timer.
func NewSequentialPacer(delay time.Duration, sleep SleepFunc) *SequentialPacer {
	if sleep == nil {
		sleep = infra.SleepContext
	}
	return &SequentialPacer{delay: delay, sleep: sleep}
}

func (p *SequentialPacer) Wait(ctx context.Context) error {
	return p.sleep(ctx, p.delay)
}

// Delay reports the configured inter-product delay.
func (p *SequentialPacer) Delay() time.Duration {
	return p.delay
}

// TokenBucketPacer takes one token per provider submission from a bucket
// shared by every orchestration call holding the same pacer, so concurrent
// callers are limited together. Spacing comes from Before; Wait between
// products only checks for cancellation.
type TokenBucketPacer struct {
	limiter *rate.Limiter
}

// NewTokenBucketPacer returns a pacer refilling one token per interval, holding
// at most burst tokens.
func NewTokenBucketPacer(interval time.Duration, burst int) *TokenBucketPacer {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketPacer{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

// Before blocks until a submission token is available.
func (p *TokenBucketPacer) Before(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

func (p *TokenBucketPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}

// NewPacer builds the pacer named by kind, one of infra.PacingSequential or
// infra.PacingTokenBucket.
func NewPacer(kind string, delay time.Duration) Pacer {
	if kind == infra.PacingTokenBucket {
		return NewTokenBucketPacer(delay, 1)
	}
	return NewSequentialPacer(delay, nil)
}
