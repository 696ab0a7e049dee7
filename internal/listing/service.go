package listing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/shopify"
)

// Vendor is the vendor name stamped on every storefront product.
const Vendor = "Custom Merch Generator"

// Tags are attached to every storefront product.
var Tags = []string{"custom", "print-on-demand", "personalized"}

// Storefront creates and removes storefront products. *shopify.Client implements it.
type Storefront interface {
	CreateProduct(ctx context.Context, in shopify.ProductInput) (*shopify.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Listing is the storefront product attached to an upload.
type Listing struct {
	ProductID     string
	VariantID     string
	URL           string
	AlreadyExists bool
}

// Service turns generated mockups into storefront products.
type Service struct {
	uploads    domain.UploadRepository
	storefront Storefront
	catalog    *mockup.Catalog
	logger     *infra.Logger
	now        func() time.Time
}

// NewService wires a listing service. A nil catalog uses the built-in table.
func NewService(uploads domain.UploadRepository, storefront Storefront, catalog *mockup.Catalog, logger *infra.Logger) *Service {
	if catalog == nil {
		catalog = mockup.DefaultCatalog()
	}
	return &Service{
		uploads:    uploads,
		storefront: storefront,
		catalog:    catalog,
		logger:     infra.LoggerOrDiscard(logger),
		now:        time.Now,
	}
}

// CreateListing publishes the mockup generated for productKey on upload
// uploadID. An existing listing for the same product is returned unchanged.
func (s *Service) CreateListing(ctx context.Context, uploadID, productKey string) (*Listing, error) {
	entry, ok := s.catalog.Lookup(productKey)
	if !ok {
		return nil, fmt.Errorf("listing: %q: %w", productKey, domain.ErrUnknownProduct)
	}
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if existing, ok := upload.Listing(entry.Key); ok {
		return &Listing{ProductID: existing.ProductID, URL: existing.URL, AlreadyExists: true}, nil
	}
	mockupURL := strings.TrimSpace(upload.MockupURLs[entry.Key])
	if mockupURL == "" {
		return nil, fmt.Errorf("listing: %s: %w", entry.Key, domain.ErrMissingMockup)
	}

	product, err := s.storefront.CreateProduct(ctx, shopify.ProductInput{
		Title:       Title(entry),
		BodyHTML:    entry.Description,
		Vendor:      Vendor,
		ProductType: entry.ProductType,
		Tags:        Tags,
		Price:       entry.Price,
		SKU:         SKU(entry.Key, s.now()),
		ImageURL:    mockupURL,
	})
	if err != nil {
		return nil, fmt.Errorf("listing: create product: %w", err)
	}

	productID := strconv.FormatInt(product.ID, 10)
	if _, err := s.uploads.AttachStorefrontInfo(ctx, upload.ID, entry.Key, productID, product.URL); err != nil {
		if delErr := s.storefront.DeleteProduct(context.WithoutCancel(ctx), product.ID); delErr != nil {
			s.logger.Error().Err(delErr).Int64("product_id", product.ID).Msg("listing: rollback of storefront product failed")
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("listing: attach storefront info: %w", err)
	}
	s.logger.Info().Str("upload_id", upload.ID).Str("product", entry.Key).Str("product_id", productID).Msg("listing: storefront product created")

	listing := &Listing{ProductID: productID, URL: product.URL}
	if product.VariantID != 0 {
		listing.VariantID = strconv.FormatInt(product.VariantID, 10)
	}
	return listing, nil
}

// Title is the storefront title for entry. Labels written in lower case, as
// they may be in a catalog override file, are title-cased.
func Title(entry mockup.Entry) string {
	label := strings.TrimSpace(entry.Label)
	if label == "" {
		label = strings.ReplaceAll(entry.Key, "_", " ")
	}
	if label == strings.ToLower(label) {
		label = cases.Title(language.English).String(label)
	}
	return "Custom " + label + " Design"
}

// SKU builds CUSTOM-<KEY>-<unix millis> with the key upper-cased and
// underscores replaced by dashes.
func SKU(key string, at time.Time) string {
	return "CUSTOM-" + strings.ToUpper(strings.ReplaceAll(key, "_", "-")) + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
