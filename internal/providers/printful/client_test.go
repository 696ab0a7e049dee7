package printful

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type responseStub struct {
	status int
	body   string
	err    error
}

// scriptedTransport replays stubs in order and records every request.
type scriptedTransport struct {
	stubs    []responseStub
	requests []*http.Request
	bodies   []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := len(s.requests)
	s.requests = append(s.requests, req)
	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	s.bodies = append(s.bodies, body)
	if idx >= len(s.stubs) {
		return nil, errors.New("unexpected request")
	}
	stub := s.stubs[idx]
	if stub.err != nil {
		return nil, stub.err
	}
	return &http.Response{
		StatusCode: stub.status,
		Body:       io.NopCloser(strings.NewReader(stub.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, transport http.RoundTripper, sleeps *sleepRecorder) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "pf-test",
		BaseURL:    "https://printful.test",
		HTTPClient: &http.Client{Transport: transport},
		Sleep:      sleeps.Sleep,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func TestDoUsesRateLimitHint(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{
		{status: http.StatusTooManyRequests, body: `{"code":429,"result":"Too Many Requests","error":{"message":"This endpoint is rate limited. Please try again after 15 seconds"}}`},
		{status: http.StatusOK, body: `{"code":200,"result":{"task_key":"gt-1"}}`},
	}}
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	var out envelope
	if err := client.Do(context.Background(), http.MethodGet, "/ping", nil, &out); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if len(sleeps.waits) != 1 || sleeps.waits[0] != 15*time.Second {
		t.Fatalf("waits = %v, want [15s]", sleeps.waits)
	}
	if out.Result.Key != "gt-1" {
		t.Fatalf("task key = %q, want gt-1", out.Result.Key)
	}
}

func TestDoUsesDefaultWaitWithoutHint(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{
		{status: http.StatusTooManyRequests, body: `{"code":429,"result":"Too Many Requests"}`},
		{status: http.StatusOK, body: `{"code":200,"result":{}}`},
	}}
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	if err := client.Do(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if len(sleeps.waits) != 1 || sleeps.waits[0] != 30*time.Second {
		t.Fatalf("waits = %v, want [30s]", sleeps.waits)
	}
}

func TestDoRateLimitExhausted(t *testing.T) {
	stub := responseStub{status: http.StatusTooManyRequests, body: `try again in 2 seconds`}
	transport := &scriptedTransport{stubs: []responseStub{stub, stub, stub}}
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	err := client.Do(context.Background(), http.MethodGet, "/ping", nil, nil)
	if !errors.Is(err, domain.ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
	}
	if len(transport.requests) != 3 {
		t.Fatalf("requests = %d, want 3", len(transport.requests))
	}
	if len(sleeps.waits) != 2 {
		t.Fatalf("waits = %v, want two waits between three attempts", sleeps.waits)
	}
	if !IsRetryable(err) {
		t.Fatal("rate limit exhaustion should be retryable")
	}
}

func TestDoNetworkBackoffIsLinear(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	transport := &scriptedTransport{stubs: []responseStub{{err: netErr}, {err: netErr}, {err: netErr}}}
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	err := client.Do(context.Background(), http.MethodGet, "/ping", nil, nil)
	if !errors.Is(err, domain.ErrTransientNetwork) {
		t.Fatalf("expected ErrTransientNetwork, got %v", err)
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(sleeps.waits) != len(want) {
		t.Fatalf("waits = %v, want %v", sleeps.waits, want)
	}
	for i := range want {
		if sleeps.waits[i] != want[i] {
			t.Fatalf("waits[%d] = %s, want %s", i, sleeps.waits[i], want[i])
		}
	}
}

func TestDoRecoversAfterNetworkError(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{
		{err: errors.New("i/o timeout")},
		{status: http.StatusOK, body: `{"code":200}`},
	}}
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	if err := client.Do(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if len(transport.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(transport.requests))
	}
}

func TestDoProviderErrorIsNotRetried(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{
		{status: http.StatusBadRequest, body: `{"code":400,"error":{"message":"Invalid variant"}}`},
	}}
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	err := client.Do(context.Background(), http.MethodPost, "/mockup-generator/create-task/19", map[string]any{}, nil)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusBadRequest || !strings.Contains(perr.Body, "Invalid variant") {
		t.Fatalf("unexpected provider error %+v", perr)
	}
	if !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatal("expected ErrProviderRejected match")
	}
	if len(transport.requests) != 1 || len(sleeps.waits) != 0 {
		t.Fatalf("requests = %d waits = %v, want 1 and none", len(transport.requests), sleeps.waits)
	}
	if IsRetryable(err) {
		t.Fatal("provider rejection should not be retryable")
	}
}

func TestDoWithoutCredentials(t *testing.T) {
	transport := &scriptedTransport{}
	client, err := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if err := client.Do(context.Background(), http.MethodGet, "/ping", nil, nil); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if len(transport.requests) != 0 {
		t.Fatalf("requests = %d, want 0", len(transport.requests))
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		cancel()
		return nil, context.Canceled
	})
	sleeps := &sleepRecorder{}
	client := newTestClient(t, transport, sleeps)

	err := client.Do(ctx, http.MethodGet, "/ping", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(sleeps.waits) != 0 {
		t.Fatalf("waits = %v, want none", sleeps.waits)
	}
}

func TestSubmitMockupPayloadAndImmediateResult(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{
		{status: http.StatusOK, body: `{"code":200,"result":{"mockups":[{"mockup_url":"https://files.printful.test/mug.jpg"}]}}`},
	}}
	client := newTestClient(t, transport, &sleepRecorder{})

	outcome, err := client.SubmitMockup(context.Background(), 19, CreateTaskRequest{
		VariantIDs: []int{1320},
		Format:     "jpg",
		Files: []File{{
			Placement: "default",
			ImageURL:  "https://cdn.example.com/cat.png",
			Position:  Position{AreaWidth: 1800, AreaHeight: 2400, Width: 1800, Height: 1800, Top: 300},
		}},
	})
	if err != nil {
		t.Fatalf("SubmitMockup error: %v", err)
	}
	if outcome.Kind != OutcomeImmediate || outcome.MockupURL != "https://files.printful.test/mug.jpg" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	req := transport.requests[0]
	if req.Method != http.MethodPost || req.URL.String() != "https://printful.test/mockup-generator/create-task/19" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer pf-test" {
		t.Fatalf("Authorization = %q", got)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(transport.bodies[0]), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["format"] != "jpg" {
		t.Fatalf("format = %v", payload["format"])
	}
	files := payload["files"].([]any)
	file := files[0].(map[string]any)
	if file["placement"] != "default" || file["image_url"] != "https://cdn.example.com/cat.png" {
		t.Fatalf("unexpected file %v", file)
	}
	position := file["position"].(map[string]any)
	if position["area_height"].(float64) != 2400 || position["top"].(float64) != 300 {
		t.Fatalf("unexpected position %v", position)
	}
}

func TestSubmitMockupTaskHandle(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{
		{status: http.StatusOK, body: `{"code":200,"result":{"task_key":"gt-42","status":"pending"}}`},
	}}
	client := newTestClient(t, transport, &sleepRecorder{})

	outcome, err := client.SubmitMockup(context.Background(), 71, CreateTaskRequest{VariantIDs: []int{4011}, Format: "jpg"})
	if err != nil {
		t.Fatalf("SubmitMockup error: %v", err)
	}
	if outcome.Kind != OutcomeTask || outcome.TaskKey != "gt-42" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestSubmitMockupEmptyResult(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{{status: http.StatusOK, body: `{"code":200,"result":{}}`}}}
	client := newTestClient(t, transport, &sleepRecorder{})

	_, err := client.SubmitMockup(context.Background(), 71, CreateTaskRequest{})
	if !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatalf("expected ErrProviderRejected, got %v", err)
	}
}

func TestTaskStatusEscapesKey(t *testing.T) {
	transport := &scriptedTransport{stubs: []responseStub{{status: http.StatusOK, body: `{"code":200,"result":{"status":"pending"}}`}}}
	client := newTestClient(t, transport, &sleepRecorder{})

	task, err := client.TaskStatus(context.Background(), "gt 1&x")
	if err != nil {
		t.Fatalf("TaskStatus error: %v", err)
	}
	if got := transport.requests[0].URL.Query().Get("task_key"); got != "gt 1&x" {
		t.Fatalf("task_key = %q", got)
	}
	if task.Key != "gt 1&x" || task.Status != TaskStatusPending {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestRateLimitWait(t *testing.T) {
	cases := []struct {
		body string
		want time.Duration
	}{
		{body: "Please try again after 15 seconds", want: 15 * time.Second},
		{body: "retry in 1 second", want: time.Second},
		{body: "WAIT 60 SECONDS", want: 60 * time.Second},
		{body: "slow down", want: 30 * time.Second},
		{body: "0 seconds", want: 30 * time.Second},
	}
	for _, tc := range cases {
		if got := rateLimitWait([]byte(tc.body), 30*time.Second); got != tc.want {
			t.Fatalf("rateLimitWait(%q) = %s, want %s", tc.body, got, tc.want)
		}
	}
}

func TestSelectMockupURL(t *testing.T) {
	cases := []struct {
		name    string
		mockups []Mockup
		want    string
	}{
		{name: "empty", want: ""},
		{
			name:    "primary only",
			mockups: []Mockup{{MockupURL: "https://p/primary.jpg"}},
			want:    "https://p/primary.jpg",
		},
		{
			name: "front extra by title",
			mockups: []Mockup{{MockupURL: "https://p/primary.jpg", Extra: []ExtraMockup{
				{Title: "Back", URL: "https://p/back.jpg"},
				{Title: "Front view", URL: "https://p/front.jpg"},
			}}},
			want: "https://p/front.jpg",
		},
		{
			name: "front extra by option",
			mockups: []Mockup{{MockupURL: "https://p/primary.jpg", Extra: []ExtraMockup{
				{Title: "Lifestyle", Option: "FRONT", URL: "https://p/front.jpg"},
			}}},
			want: "https://p/front.jpg",
		},
		{
			name: "no front extra",
			mockups: []Mockup{{MockupURL: "https://p/primary.jpg", Extra: []ExtraMockup{
				{Title: "Left", URL: "https://p/left.jpg"},
			}}},
			want: "https://p/primary.jpg",
		},
		{
			name: "front extra on later mockup",
			mockups: []Mockup{
				{MockupURL: "https://p/primary.jpg", Extra: []ExtraMockup{{Title: "Back", URL: "https://p/back.jpg"}}},
				{MockupURL: "https://p/second.jpg", Extra: []ExtraMockup{{Option: "Front", URL: "https://p/second-front.jpg"}}},
			},
			want: "https://p/second-front.jpg",
		},
		{
			name: "first non-empty primary",
			mockups: []Mockup{
				{Extra: []ExtraMockup{{Title: "Left", URL: "https://p/left.jpg"}}},
				{MockupURL: "https://p/second.jpg"},
			},
			want: "https://p/second.jpg",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SelectMockupURL(tc.mockups); got != tc.want {
				t.Fatalf("SelectMockupURL = %q, want %q", got, tc.want)
			}
		})
	}
}
