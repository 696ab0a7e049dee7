package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/middleware"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/printful"
)

type mockupRequest struct {
	ImageURL       string   `json:"imageUrl"`
	UserIdentifier string   `json:"userIdentifier"`
	Theme          string   `json:"theme"`
	Products       []string `json:"products"`
}

type mockupResponse struct {
	Success  bool                  `json:"success"`
	Upload   *domain.Upload        `json:"upload"`
	Mockups  []mockup.MockupResult `json:"mockups"`
	Failures map[string]string     `json:"failures,omitempty"`
}

// decodeMockupRequest parses and validates the body shared by the synchronous
// and queued mockup endpoints. Unknown product keys are rejected here so no
// provider work starts for a bad request.
func (a *App) decodeMockupRequest(r *http.Request) (domain.NewUpload, error) {
	var req mockupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.NewUpload{}, invalidf("invalid payload")
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.ImageURL == "" {
		return domain.NewUpload{}, invalidf("imageUrl required")
	}
	products := req.Products
	if len(products) == 0 {
		products = a.DefaultProducts
	}
	entries, err := a.Catalog.Resolve(products)
	if err != nil {
		return domain.NewUpload{}, err
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return domain.NewUpload{
		OriginalImageURL:  req.ImageURL,
		RequestedProducts: keys,
		UserIdentifier:    strings.TrimSpace(req.UserIdentifier),
		Theme:             strings.TrimSpace(req.Theme),
		Country:           middleware.CountryFromContext(r.Context()),
	}, nil
}

// GenerateMockups renders every requested product and records the upload.
// Products that fail are reported in failures; the call only fails when no
// mockup was produced.
func (a *App) GenerateMockups(w http.ResponseWriter, r *http.Request) {
	in, err := a.decodeMockupRequest(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Mockups.Generate(r.Context(), in.OriginalImageURL, in.RequestedProducts)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := res.Err(); err != nil {
		a.logger(r).Warn().Err(err).Str("image_url", in.OriginalImageURL).Msg("no mockups generated")
		a.json(w, http.StatusBadGateway, errorResponse{
			Kind:      domain.ErrorKind(err),
			Error:     "no mockups could be generated",
			Retryable: printful.IsRetryable(err),
			Failures:  res.FailureMessages(),
		})
		return
	}
	in.MockupURLs = res.URLs()
	in.MockupErrors = res.FailureMessages()
	upload, err := a.Uploads.Create(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, mockupResponse{
		Success:  true,
		Upload:   upload,
		Mockups:  res.Mockups,
		Failures: res.FailureMessages(),
	})
}

// EnqueueMockups queues the request for the background worker.
func (a *App) EnqueueMockups(w http.ResponseWriter, r *http.Request) {
	in, err := a.decodeMockupRequest(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	upload, err := a.Jobs.Enqueue(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{"success": true, "id": upload.ID, "status": upload.Status})
}
