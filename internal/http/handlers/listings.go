package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createListingRequest struct {
	UploadID    string `json:"uploadId"`
	ProductType string `json:"productType"`
}

type createListingResponse struct {
	Success       bool   `json:"success"`
	ShopifyURL    string `json:"shopifyUrl"`
	ProductID     string `json:"productId"`
	VariantID     string `json:"variantId,omitempty"`
	AlreadyExists bool   `json:"alreadyExists,omitempty"`
}

// CreateListing publishes one product mockup of an upload to the storefront.
func (a *App) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, r, invalidf("invalid payload"))
		return
	}
	req.UploadID = strings.TrimSpace(req.UploadID)
	req.ProductType = strings.TrimSpace(req.ProductType)
	if req.UploadID == "" || req.ProductType == "" {
		a.fail(w, r, invalidf("uploadId and productType required"))
		return
	}
	if a.Listings == nil {
		a.error(w, http.StatusServiceUnavailable, "MissingCredentials", "storefront is not configured")
		return
	}
	l, err := a.Listings.CreateListing(r.Context(), req.UploadID, req.ProductType)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, createListingResponse{
		Success:       true,
		ShopifyURL:    l.URL,
		ProductID:     l.ProductID,
		VariantID:     l.VariantID,
		AlreadyExists: l.AlreadyExists,
	})
}
