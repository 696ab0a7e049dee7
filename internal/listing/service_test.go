package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/shopify"
)

type stubUploads struct {
	domain.UploadRepository
	upload    *domain.Upload
	getErr    error
	attachErr error
	attached  []string
}

func (s *stubUploads) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.upload, nil
}

func (s *stubUploads) AttachStorefrontInfo(ctx context.Context, id, productKey, productID, productURL string) (*domain.Upload, error) {
	if s.attachErr != nil {
		return nil, s.attachErr
	}
	s.attached = append(s.attached, id, productKey, productID, productURL)
	return s.upload, nil
}

type stubStorefront struct {
	inputs  []shopify.ProductInput
	deleted []int64
	err     error
}

func (s *stubStorefront) CreateProduct(ctx context.Context, in shopify.ProductInput) (*shopify.Product, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	return &shopify.Product{ID: 8812, VariantID: 4401, Handle: "custom-mug-design", URL: "https://demo.myshopify.com/products/custom-mug-design"}, nil
}

func (s *stubStorefront) DeleteProduct(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newUpload() *domain.Upload {
	return &domain.Upload{
		ID:         "6a0f4a3e-3c1d-4f0e-9a8b-1c2d3e4f5a6b",
		MockupURLs: map[string]string{"mug": "https://p/mug.jpg"},
	}
}

func newService(uploads *stubUploads, store *stubStorefront) *Service {
	svc := NewService(uploads, store, nil, nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestCreateListing(t *testing.T) {
	uploads := &stubUploads{upload: newUpload()}
	store := &stubStorefront{}
	svc := newService(uploads, store)

	listing, err := svc.CreateListing(context.Background(), uploads.upload.ID, "mug")
	if err != nil {
		t.Fatalf("CreateListing error: %v", err)
	}
	if listing.ProductID != "8812" || listing.VariantID != "4401" || listing.AlreadyExists {
		t.Fatalf("unexpected listing %+v", listing)
	}
	in := store.inputs[0]
	if in.Title != "Custom Mug Design" || in.Price != "24.99" || in.ProductType != "Mug" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.SKU != "CUSTOM-MUG-1700000000000" || in.ImageURL != "https://p/mug.jpg" || in.Vendor != Vendor {
		t.Fatalf("unexpected input %+v", in)
	}
	want := []string{uploads.upload.ID, "mug", "8812", "https://demo.myshopify.com/products/custom-mug-design"}
	for i := range want {
		if uploads.attached[i] != want[i] {
			t.Fatalf("attached[%d] = %q, want %q", i, uploads.attached[i], want[i])
		}
	}
}

func TestCreateListingAlreadyExists(t *testing.T) {
	upload := newUpload()
	upload.StorefrontProductIDs = map[string]string{"mug": "77"}
	upload.StorefrontProductURLs = map[string]string{"mug": "https://demo.myshopify.com/products/old"}
	store := &stubStorefront{}
	svc := newService(&stubUploads{upload: upload}, store)

	listing, err := svc.CreateListing(context.Background(), upload.ID, "mug")
	if err != nil {
		t.Fatalf("CreateListing error: %v", err)
	}
	if !listing.AlreadyExists || listing.ProductID != "77" || listing.URL != "https://demo.myshopify.com/products/old" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if len(store.inputs) != 0 {
		t.Fatal("no product should be created")
	}
}

func TestCreateListingErrors(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		uploads *stubUploads
		want    error
	}{
		{name: "unknown product", key: "umbrella", uploads: &stubUploads{upload: newUpload()}, want: domain.ErrUnknownProduct},
		{name: "missing upload", key: "mug", uploads: &stubUploads{getErr: domain.ErrNotFound}, want: domain.ErrNotFound},
		{name: "no mockup", key: "shirt", uploads: &stubUploads{upload: newUpload()}, want: domain.ErrMissingMockup},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubStorefront{}
			_, err := newService(tc.uploads, store).CreateListing(context.Background(), "id", tc.key)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(store.inputs) != 0 {
				t.Fatal("no product should be created")
			}
		})
	}
}

func TestCreateListingRollsBackOnAttachFailure(t *testing.T) {
	uploads := &stubUploads{upload: newUpload(), attachErr: errors.New("db down")}
	store := &stubStorefront{}
	_, err := newService(uploads, store).CreateListing(context.Background(), uploads.upload.ID, "mug")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.deleted) != 1 || store.deleted[0] != 8812 {
		t.Fatalf("deleted = %v, want [8812]", store.deleted)
	}
}

func TestTitle(t *testing.T) {
	cases := []struct {
		entry mockup.Entry
		want  string
	}{
		{entry: mockup.Entry{Key: "phone_case", Label: "iPhone Case"}, want: "Custom iPhone Case Design"},
		{entry: mockup.Entry{Key: "poster", Label: "wall poster"}, want: "Custom Wall Poster Design"},
		{entry: mockup.Entry{Key: "tote_bag"}, want: "Custom Tote Bag Design"},
	}
	for _, tc := range cases {
		if got := Title(tc.entry); got != tc.want {
			t.Fatalf("Title(%+v) = %q, want %q", tc.entry, got, tc.want)
		}
	}
}

func TestSKU(t *testing.T) {
	got := SKU("shower_curtain", time.UnixMilli(1700000000123))
	if got != "CUSTOM-SHOWER-CURTAIN-1700000000123" {
		t.Fatalf("SKU = %q", got)
	}
}
