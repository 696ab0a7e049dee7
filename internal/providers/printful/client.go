package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
)

var tracer = otel.Tracer("printful-client")

// DefaultBaseURL is the public Printful API endpoint.
const DefaultBaseURL = "https://api.printful.com"

var waitHintPattern = regexp.MustCompile(`(?i)(\d+)\s*seconds?`)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures the Printful client.
type Options struct {
	APIKey         string
	BaseURL        string
	MaxAttempts    int
	RateLimitWait  time.Duration
	NetworkBackoff time.Duration
	HTTPClient     *http.Client
	Logger         *infra.Logger
	Sleep          SleepFunc
	RequestTimeout time.Duration
}

// Client issues authenticated requests to the Printful API. Rate-limited
// responses and network failures are retried up to MaxAttempts; any other
// non-2xx response fails immediately with a *ProviderError.
type Client struct {
	apiKey         string
	baseURL        string
	maxAttempts    int
	rateLimitWait  time.Duration
	networkBackoff time.Duration
	httpClient     *http.Client
	logger         *infra.Logger
	sleep          SleepFunc
}

// ProviderError is a non-retryable rejection from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("printful: status %d: %s", e.StatusCode, e.Body)
}

// Is lets callers match any provider rejection with domain.ErrProviderRejected.
func (e *ProviderError) Is(target error) bool {
	return target == domain.ErrProviderRejected
}

// NewClient constructs a client with defaults applied to zero-valued options.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("printful: invalid base url: %w", err)
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	rateLimitWait := opts.RateLimitWait
	if rateLimitWait <= 0 {
		rateLimitWait = 30 * time.Second
	}
	networkBackoff := opts.NetworkBackoff
	if networkBackoff <= 0 {
		networkBackoff = 5 * time.Second
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = infra.SleepContext
	}
	return &Client{
		apiKey:         strings.TrimSpace(opts.APIKey),
		baseURL:        baseURL,
		maxAttempts:    maxAttempts,
		rateLimitWait:  rateLimitWait,
		networkBackoff: networkBackoff,
		httpClient:     httpClient,
		logger:         infra.LoggerOrDiscard(opts.Logger),
		sleep:          sleep,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// SubmitMockup starts a render for productID. The provider answers either with
// the finished mockups or with a task key that must be polled.
func (c *Client) SubmitMockup(ctx context.Context, productID int, req CreateTaskRequest) (SubmitOutcome, error) {
	var resp envelope
	path := "/mockup-generator/create-task/" + strconv.Itoa(productID)
	if err := c.Do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return SubmitOutcome{}, err
	}
	if u := SelectMockupURL(resp.Result.Mockups); u != "" {
		return SubmitOutcome{Kind: OutcomeImmediate, MockupURL: u}, nil
	}
	if key := strings.TrimSpace(resp.Result.Key); key != "" {
		return SubmitOutcome{Kind: OutcomeTask, TaskKey: key}, nil
	}
	return SubmitOutcome{}, fmt.Errorf("printful: create task %d: response has neither mockups nor task key: %w", productID, domain.ErrProviderRejected)
}

// TaskStatus fetches the current state of an asynchronous render.
func (c *Client) TaskStatus(ctx context.Context, taskKey string) (*Task, error) {
	var resp envelope
	path := "/mockup-generator/task?task_key=" + url.QueryEscape(taskKey)
	if err := c.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	task := resp.Result
	if task.Key == "" {
		task.Key = taskKey
	}
	return &task, nil
}

// Do sends method path with payload encoded as JSON and decodes a 2xx body into out.
func (c *Client) Do(ctx context.Context, method, path string, payload any, out any) error {
	if !c.HasCredentials() {
		return fmt.Errorf("printful: %w", domain.ErrMissingCredentials)
	}
	var body []byte
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("printful: encode request: %w", err)
		}
		body = raw
	}

	var (
		lastErr     error
		rateLimited bool
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		status, raw, err := c.send(ctx, method, path, body, attempt)
		var wait time.Duration
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			lastErr, rateLimited = err, false
			wait = time.Duration(attempt) * c.networkBackoff
			c.logger.Warn().Err(err).Str("path", path).Int("attempt", attempt).Dur("backoff", wait).Msg("printful: network error")
		case status == http.StatusTooManyRequests:
			lastErr, rateLimited = nil, true
			wait = rateLimitWait(raw, c.rateLimitWait)
			c.logger.Warn().Str("path", path).Int("attempt", attempt).Dur("wait", wait).Msg("printful: rate limited")
		case status >= 200 && status < 300:
			if out == nil || len(bytes.TrimSpace(raw)) == 0 {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("printful: decode response: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("printful: %s %s: %w", method, path, &ProviderError{StatusCode: status, Body: strings.TrimSpace(string(raw))})
		}
		if attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	if rateLimited {
		return fmt.Errorf("printful: %s %s: %w after %d attempts", method, path, domain.ErrRateLimitExceeded, c.maxAttempts)
	}
	return fmt.Errorf("printful: %s %s: %w after %d attempts: %w", method, path, domain.ErrTransientNetwork, c.maxAttempts, lastErr)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, attempt int) (status int, raw []byte, err error) {
	ctx, span := tracer.Start(ctx, "printful_request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("printful.path", path),
		attribute.Int("printful.attempt", attempt),
	))
	defer func() {
		span.SetAttributes(attribute.Int("http.status_code", status))
		infra.EndSpan(span, err)
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("printful: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("printful: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// rateLimitWait reads a "N seconds" hint from a 429 body, falling back to def.
func rateLimitWait(body []byte, def time.Duration) time.Duration {
	match := waitHintPattern.FindSubmatch(body)
	if match == nil {
		return def
	}
	secs, err := strconv.Atoi(string(match[1]))
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

// IsRetryable reports whether err is one the caller may retry later.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrRateLimitExceeded) || errors.Is(err, domain.ErrTransientNetwork)
}
