package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
)

var tracer = otel.Tracer("transcoder-client")

// ErrNotConfigured indicates that no transcoding service URL was configured.
var ErrNotConfigured = errors.New("transcoder: service url is not configured")

// Options configures the video-to-image transcoding client.
type Options struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client turns an uploaded video into a still image plus a caption phrase.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *infra.Logger
}

// Result is the transcoder's answer.
type Result struct {
	ImageURL string `json:"image_url"`
	Phrase   string `json:"phrase"`
}

type request struct {
	VideoURL string `json:"video_url"`
	Theme    string `json:"theme,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient constructs a client. Rendering a frame can take minutes, so the
// default timeout is five minutes.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		url:        strings.TrimSpace(opts.URL),
		httpClient: httpClient,
		logger:     infra.LoggerOrDiscard(opts.Logger),
	}
}

// Configured reports whether a service URL is set.
func (c *Client) Configured() bool {
	return c.url != ""
}

// Transcode asks the service to extract an image from videoURL.
func (c *Client) Transcode(ctx context.Context, videoURL, theme string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := tracer.Start(ctx, "transcoder_transcode")
	res, err := c.transcode(ctx, videoURL, theme)
	if err == nil {
		span.SetAttributes(attribute.Bool("transcoder.has_phrase", res.Phrase != ""))
	}
	infra.EndSpan(span, err)
	return res, err
}

func (c *Client) transcode(ctx context.Context, videoURL, theme string) (*Result, error) {
	body, err := json.Marshal(request{VideoURL: videoURL, Theme: strings.TrimSpace(theme)})
	if err != nil {
		return nil, fmt.Errorf("transcoder: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transcoder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcoder: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcoder: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error != "" {
			return nil, fmt.Errorf("transcoder: %s", detail.Error)
		}
		return nil, fmt.Errorf("transcoder: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("transcoder: decode response: %w", err)
	}
	if strings.TrimSpace(res.ImageURL) == "" {
		return nil, errors.New("transcoder: response has no image_url")
	}
	c.logger.Info().Dur("took", time.Since(started)).Str("image_url", res.ImageURL).Msg("transcoder: video converted")
	return &res, nil
}
