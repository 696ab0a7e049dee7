package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/listing"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/transcoder"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/storage"
)

// MockupGenerator renders mockups for an image. *mockup.Orchestrator implements it.
type MockupGenerator interface {
	Generate(ctx context.Context, imageURL string, keys []string) (*mockup.Result, error)
}

// ListingCreator publishes mockups to the storefront. *listing.Service implements it.
type ListingCreator interface {
	CreateListing(ctx context.Context, uploadID, productKey string) (*listing.Listing, error)
}

// Transcoder extracts a still image from an uploaded video.
type Transcoder interface {
	Transcode(ctx context.Context, videoURL, theme string) (*transcoder.Result, error)
}

// App carries the dependencies shared by every handler.
type App struct {
	Uploads         domain.UploadRepository
	Jobs            domain.MockupJobQueue
	Mockups         MockupGenerator
	Listings        ListingCreator
	Storage         storage.Store
	Transcoder      Transcoder
	Catalog         *mockup.Catalog
	DefaultProducts []string
	// HTTPClient downloads mockup images for archives.
	HTTPClient *http.Client
	Logger     *infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
	Failures  any    `json:"failures,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Kind: kind, Error: message})
}

// fail reports err using the error taxonomy. Internal errors are logged and
// replaced by a generic message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.ErrorKind(err)
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		a.logger(r).Error().Err(err).Msg("request failed")
		msg = "internal error"
	}
	a.error(w, code, kind, msg)
}

func (a *App) logger(r *http.Request) *infra.Logger {
	if l := infra.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return infra.LoggerOrDiscard(a.Logger)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownProduct),
		errors.Is(err, domain.ErrInvalidUpload),
		errors.Is(err, domain.ErrMissingMockup):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrMissingCredentials),
		errors.Is(err, transcoder.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrPollTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrTransientNetwork),
		errors.Is(err, domain.ErrProviderRejected),
		errors.Is(err, domain.ErrTaskFailed),
		errors.Is(err, domain.ErrNoMockups):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
