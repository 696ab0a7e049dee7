package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
)

var tracer = otel.Tracer("shopify-client")

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2024-01"

// Options configures the Shopify Admin API client.
type Options struct {
	StoreDomain    string
	AccessToken    string
	APIVersion     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client creates and manages storefront products through the Admin REST API.
type Client struct {
	shop        string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *infra.Logger
}

// APIError is a non-2xx answer from the Admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == domain.ErrProviderRejected
}

// ProductInput describes a single-variant product to create.
type ProductInput struct {
	Title       string
	BodyHTML    string
	Vendor      string
	ProductType string
	Tags        []string
	Price       string
	SKU         string
	ImageURL    string
}

// Product is the subset of the Admin API product the service relies on.
type Product struct {
	ID        int64
	Handle    string
	VariantID int64
	URL       string
}

type productPayload struct {
	Product productBody `json:"product"`
}

type productBody struct {
	Title       string        `json:"title"`
	BodyHTML    string        `json:"body_html"`
	Vendor      string        `json:"vendor"`
	ProductType string        `json:"product_type"`
	Tags        string        `json:"tags"`
	Status      string        `json:"status"`
	Variants    []variantBody `json:"variants"`
	Images      []imageBody   `json:"images,omitempty"`
}

type variantBody struct {
	Price               string  `json:"price"`
	SKU                 string  `json:"sku"`
	InventoryManagement *string `json:"inventory_management"`
	FulfillmentService  string  `json:"fulfillment_service"`
}

type imageBody struct {
	Src string `json:"src"`
}

type productResponse struct {
	Product struct {
		ID       int64  `json:"id"`
		Handle   string `json:"handle"`
		Variants []struct {
			ID int64 `json:"id"`
		} `json:"variants"`
	} `json:"product"`
}

// NewClient constructs a client with defaults applied to zero-valued options.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	version := strings.TrimSpace(opts.APIVersion)
	if version == "" {
		version = DefaultAPIVersion
	}
	return &Client{
		shop:        ShopName(opts.StoreDomain),
		accessToken: strings.TrimSpace(opts.AccessToken),
		apiVersion:  version,
		httpClient:  httpClient,
		logger:      infra.LoggerOrDiscard(opts.Logger),
	}, nil
}

// ShopName strips scheme, trailing slashes and the .myshopify.com suffix from domain.
func ShopName(storeDomain string) string {
	d := strings.TrimSpace(strings.ToLower(storeDomain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimRight(d, "/")
	return strings.TrimSuffix(d, ".myshopify.com")
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.shop != "" && c.accessToken != ""
}

// ProductURL is the public storefront URL for a product handle.
func (c *Client) ProductURL(handle string) string {
	return "https://" + c.shop + ".myshopify.com/products/" + handle
}

// CreateProduct creates an active product with one manually fulfilled variant.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	payload := productPayload{Product: productBody{
		Title:       in.Title,
		BodyHTML:    in.BodyHTML,
		Vendor:      in.Vendor,
		ProductType: in.ProductType,
		Tags:        strings.Join(in.Tags, ", "),
		Status:      "active",
		Variants: []variantBody{{
			Price:              in.Price,
			SKU:                in.SKU,
			FulfillmentService: "manual",
		}},
	}}
	if in.ImageURL != "" {
		payload.Product.Images = []imageBody{{Src: in.ImageURL}}
	}
	var resp productResponse
	if err := c.do(ctx, http.MethodPost, "/products.json", payload, &resp); err != nil {
		return nil, err
	}
	product := c.toProduct(resp)
	c.logger.Info().Int64("product_id", product.ID).Str("handle", product.Handle).Msg("shopify: product created")
	return product, nil
}

// GetProduct fetches a product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var resp productResponse
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10)+".json", nil, &resp); err != nil {
		return nil, err
	}
	return c.toProduct(resp), nil
}

// DeleteProduct removes a product by id.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/products/"+strconv.FormatInt(id, 10)+".json", nil, nil)
}

func (c *Client) toProduct(resp productResponse) *Product {
	p := &Product{ID: resp.Product.ID, Handle: resp.Product.Handle}
	if len(resp.Product.Variants) > 0 {
		p.VariantID = resp.Product.Variants[0].ID
	}
	if p.Handle != "" {
		p.URL = c.ProductURL(p.Handle)
	}
	return p
}

func (c *Client) endpoint(path string) string {
	return "https://" + c.shop + ".myshopify.com/admin/api/" + c.apiVersion + path
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) (err error) {
	if !c.HasCredentials() {
		return fmt.Errorf("shopify: %w", domain.ErrMissingCredentials)
	}
	ctx, span := tracer.Start(ctx, "shopify_request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("shopify.path", path),
	))
	defer func() { infra.EndSpan(span, err) }()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("shopify: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("shopify: build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("shopify: read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("shopify: decode response: %w", err)
	}
	return nil
}
