package domain

import "time"

// UploadStatus enumerates the lifecycle of an upload record.
type UploadStatus string

const (
	UploadStatusQueued    UploadStatus = "QUEUED"
	UploadStatusRunning   UploadStatus = "RUNNING"
	UploadStatusSucceeded UploadStatus = "SUCCEEDED"
	UploadStatusFailed    UploadStatus = "FAILED"
)

// Upload is a persisted source image together with the mockups generated for it
// and any storefront listings created from those mockups. Maps are keyed by
// catalog key.
type Upload struct {
	ID                    string            `json:"id"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	OriginalImageURL      string            `json:"original_image_url"`
	RequestedProducts     []string          `json:"requested_products"`
	MockupURLs            map[string]string `json:"mockup_urls"`
	MockupErrors          map[string]string `json:"mockup_errors,omitempty"`
	UserIdentifier        string            `json:"user_identifier,omitempty"`
	Theme                 string            `json:"theme,omitempty"`
	Country               string            `json:"country,omitempty"`
	Status                UploadStatus      `json:"status"`
	ErrorMessage          string            `json:"error_message,omitempty"`
	StorefrontProductIDs  map[string]string `json:"shopify_product_ids,omitempty"`
	StorefrontProductURLs map[string]string `json:"shopify_product_urls,omitempty"`
}

// NewUpload carries the caller-supplied fields of a record about to be created.
type NewUpload struct {
	OriginalImageURL  string
	RequestedProducts []string
	MockupURLs        map[string]string
	MockupErrors      map[string]string
	UserIdentifier    string
	Theme             string
	Country           string
}

// StorefrontListing is the storefront product created from one mockup.
type StorefrontListing struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	URL       string `json:"shopifyUrl"`
}

// Listing returns the storefront listing already attached for a product key.
func (u *Upload) Listing(productKey string) (StorefrontListing, bool) {
	if u == nil {
		return StorefrontListing{}, false
	}
	url := u.StorefrontProductURLs[productKey]
	if url == "" {
		return StorefrontListing{}, false
	}
	return StorefrontListing{ProductID: u.StorefrontProductIDs[productKey], URL: url}, true
}
