package mockup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/printful"
)

var tracer = otel.Tracer("mockup-orchestrator")

// Submitter starts a provider render. *printful.Client implements it.
type Submitter interface {
	SubmitMockup(ctx context.Context, productID int, req printful.CreateTaskRequest) (printful.SubmitOutcome, error)
}

// TaskPoller resolves a task key into a mockup URL. *printful.Poller implements it.
type TaskPoller interface {
	PollUntilComplete(ctx context.Context, taskKey string, maxAttempts int, interval time.Duration) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	Catalog      *Catalog
	Submitter    Submitter
	Poller       TaskPoller
	Pacer        Pacer
	PollAttempts int
	PollInterval time.Duration
	Logger       *infra.Logger
}

// Orchestrator renders one source image onto a list of products.
//
// Products are processed one after another in input order with the pacer
// consulted between consecutive products, and before every submission when it
// is a SubmissionGate. A failure for one product is
// recorded and the remaining products are still attempted. Cancelling the
// context aborts the whole call without a partial result.
type Orchestrator struct {
	catalog      *Catalog
	submitter    Submitter
	poller       TaskPoller
	pacer        Pacer
	pollAttempts int
	pollInterval time.Duration
	logger       *infra.Logger
}

// MockupResult is a finished mockup for one product.
type MockupResult struct {
	Product   string `json:"product"`
	MockupURL string `json:"mockupUrl"`
}

// Failure records why one product produced no mockup.
type Failure struct {
	Product string
	Err     error
}

func (f Failure) Error() string {
	return f.Product + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result holds the outcome of one Generate call. Mockups keep input order.
type Result struct {
	Mockups  []MockupResult
	Failures []Failure
}

// URLs returns the mockups keyed by product.
func (r *Result) URLs() map[string]string {
	out := make(map[string]string, len(r.Mockups))
	for _, m := range r.Mockups {
		out[m.Product] = m.MockupURL
	}
	return out
}

// FailureMessages returns the failure messages keyed by product.
func (r *Result) FailureMessages() map[string]string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Failures))
	for _, f := range r.Failures {
		out[f.Product] = f.Err.Error()
	}
	return out
}

// Err is nil when at least one mockup was produced. Otherwise it joins
// domain.ErrNoMockups with every product failure.
func (r *Result) Err() error {
	if len(r.Mockups) > 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, domain.ErrNoMockups)
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// NewOrchestrator validates opts and applies defaults.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Submitter == nil {
		return nil, errors.New("mockup: submitter is required")
	}
	if opts.Poller == nil {
		return nil, errors.New("mockup: poller is required")
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	pacer := opts.Pacer
	if pacer == nil {
		pacer = NewSequentialPacer(3*time.Second, nil)
	}
	attempts := opts.PollAttempts
	if attempts <= 0 {
		attempts = 10
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Orchestrator{
		catalog:      catalog,
		submitter:    opts.Submitter,
		poller:       opts.Poller,
		pacer:        pacer,
		pollAttempts: attempts,
		pollInterval: interval,
		logger:       infra.LoggerOrDiscard(opts.Logger),
	}, nil
}

// Catalog returns the product table used to resolve keys.
func (o *Orchestrator) Catalog() *Catalog {
	return o.catalog
}

// Generate renders imageURL onto every product in keys. Unknown keys fail with
// domain.ErrUnknownProduct before any provider call. The returned error is
// reserved for invalid input and cancellation; per-product failures are
// reported in the Result.
func (o *Orchestrator) Generate(ctx context.Context, imageURL string, keys []string) (*Result, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("mockup: source image url is required: %w", domain.ErrInvalidUpload)
	}
	entries, err := o.catalog.Resolve(keys)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "mockup_generate", trace.WithAttributes(
		attribute.Int("mockup.products", len(entries)),
	))
	result, err := o.generate(ctx, imageURL, entries)
	if err == nil {
		span.SetAttributes(
			attribute.Int("mockup.succeeded", len(result.Mockups)),
			attribute.Int("mockup.failed", len(result.Failures)),
		)
	}
	infra.EndSpan(span, err)
	return result, err
}

func (o *Orchestrator) generate(ctx context.Context, imageURL string, entries []Entry) (*Result, error) {
	result := &Result{Mockups: make([]MockupResult, 0, len(entries))}
	gate, _ := o.pacer.(SubmissionGate)
	for i, entry := range entries {
		if gate != nil {
			if err := gate.Before(ctx); err != nil {
				return nil, err
			}
		}
		mockupURL, err := o.renderOne(ctx, imageURL, entry)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			o.logger.Warn().Err(err).Str("product", entry.Key).Str("kind", domain.ErrorKind(err)).Msg("mockup: product skipped")
			result.Failures = append(result.Failures, Failure{Product: entry.Key, Err: err})
		} else {
			o.logger.Info().Str("product", entry.Key).Str("mockup_url", mockupURL).Msg("mockup: product rendered")
			result.Mockups = append(result.Mockups, MockupResult{Product: entry.Key, MockupURL: mockupURL})
		}
		if i < len(entries)-1 {
			if err := o.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func (o *Orchestrator) renderOne(ctx context.Context, imageURL string, entry Entry) (string, error) {
	outcome, err := o.submitter.SubmitMockup(ctx, entry.ProductID, entry.RenderRequest(imageURL))
	if err != nil {
		return "", err
	}
	switch outcome.Kind {
	case printful.OutcomeImmediate:
		return outcome.MockupURL, nil
	case printful.OutcomeTask:
		o.logger.Debug().Str("product", entry.Key).Str("task_key", outcome.TaskKey).Msg("mockup: polling task")
		return o.poller.PollUntilComplete(ctx, outcome.TaskKey, o.pollAttempts, o.pollInterval)
	default:
		return "", fmt.Errorf("mockup: unexpected submit outcome %s: %w", outcome.Kind, domain.ErrProviderRejected)
	}
}
