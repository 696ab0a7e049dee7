package mockup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/printful"
)

// Catalog keys.
const (
	KeyMug           = "mug"
	KeyShirt         = "shirt"
	KeyShowerCurtain = "shower_curtain"
	KeyBathMat       = "bath_mat"
	KeyTowel         = "towel"
	KeyHat           = "hat"
	KeyPhoneCase     = "phone_case"
	KeySweatpants    = "sweatpants"
	KeyPillow        = "pillow"
	KeySticker       = "sticker"
)

// Entry maps a catalog key to the provider product it renders on and the
// storefront attributes used when it is listed for sale.
type Entry struct {
	Key         string            `json:"key"`
	ProductID   int               `json:"productId"`
	VariantID   int               `json:"variantId"`
	Placement   string            `json:"placement"`
	Position    printful.Position `json:"-"`
	ProductType string            `json:"productType"`
	Label       string            `json:"label"`
	Description string            `json:"-"`
	Price       string            `json:"price"`
}

// RenderRequest builds the provider submission placing imageURL on the entry's print area.
func (e Entry) RenderRequest(imageURL string) printful.CreateTaskRequest {
	return printful.CreateTaskRequest{
		VariantIDs: []int{e.VariantID},
		Format:     "jpg",
		Files: []printful.File{{
			Placement: e.Placement,
			ImageURL:  imageURL,
			Position:  e.Position,
		}},
	}
}

// Catalog is an immutable lookup table of product entries.
type Catalog struct {
	entries map[string]Entry
}

var defaultPosition = printful.Position{
	AreaWidth:  1800,
	AreaHeight: 2400,
	Width:      1800,
	Height:     1800,
	Top:        300,
	Left:       0,
}

// DefaultCatalog returns the built-in product table.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Entry{
		{
			Key: KeyMug, ProductID: 19, VariantID: 1320, Placement: "default",
			ProductType: "Mug", Label: "Mug", Price: "24.99",
			Description: "<p>Start every morning with a laugh. This custom ceramic mug features your one-of-a-kind design.</p>" +
				"<ul><li>11 oz ceramic</li><li>Dishwasher and microwave safe</li><li>Printed on demand just for you</li></ul>",
		},
		{
			Key: KeyShirt, ProductID: 71, VariantID: 4011, Placement: "front",
			ProductType: "T-Shirt", Label: "T-Shirt", Price: "29.99",
			Description: "<p>Wear your design loud and proud on a soft, comfortable unisex tee.</p>" +
				"<ul><li>100% combed ring-spun cotton</li><li>Pre-shrunk fabric</li><li>Printed on demand just for you</li></ul>",
		},
		{
			Key: KeyShowerCurtain, ProductID: 311, VariantID: 8965, Placement: "default",
			ProductType: "Home & Living", Label: "Shower Curtain", Price: "49.99",
			Description: "<p>Turn your bathroom into a gallery with a full-coverage printed shower curtain.</p>" +
				"<ul><li>71\" x 74\" polyester</li><li>Hooks not included</li></ul>",
		},
		{
			Key: KeyBathMat, ProductID: 433, VariantID: 11122, Placement: "default",
			ProductType: "Home & Living", Label: "Bath Mat", Price: "39.99",
			Description: "<p>A plush, non-slip bath mat that puts your design underfoot.</p>" +
				"<ul><li>Microfiber top</li><li>Anti-slip backing</li></ul>",
		},
		{
			Key: KeyTowel, ProductID: 259, VariantID: 8452, Placement: "default",
			ProductType: "Home & Living", Label: "Beach Towel", Price: "34.99",
			Description: "<p>Soak up the sun with an oversized beach towel printed edge to edge.</p>" +
				"<ul><li>Soft polyester front</li><li>Absorbent cotton back</li></ul>",
		},
		{
			Key: KeyHat, ProductID: 206, VariantID: 7853, Placement: "embroidery_front",
			ProductType: "Accessories", Label: "Dad Hat", Price: "27.99",
			Description: "<p>A classic low-profile dad hat with your design stitched on the front.</p>" +
				"<ul><li>Adjustable strap</li><li>100% chino cotton twill</li></ul>",
		},
		{
			Key: KeyPhoneCase, ProductID: 181, VariantID: 10994, Placement: "default",
			ProductType: "Accessories", Label: "iPhone Case", Price: "22.99",
			Description: "<p>Protect your phone with a glossy case carrying your design.</p>" +
				"<ul><li>Impact-resistant shell</li><li>Wireless charging compatible</li></ul>",
		},
		{
			Key: KeySweatpants, ProductID: 342, VariantID: 10087, Placement: "front",
			ProductType: "Apparel", Label: "Sweatpants", Price: "44.99",
			Description: "<p>Lounge in style with all-over printed sweatpants.</p>" +
				"<ul><li>Fleece lining</li><li>Elastic waistband with drawstring</li></ul>",
		},
		{
			Key: KeyPillow, ProductID: 83, VariantID: 4533, Placement: "front",
			ProductType: "Home & Living", Label: "Throw Pillow", Price: "32.99",
			Description: "<p>A cozy throw pillow featuring your design front and center.</p>" +
				"<ul><li>Insert included</li><li>Concealed zipper</li></ul>",
		},
		{
			Key: KeySticker, ProductID: 358, VariantID: 10163, Placement: "default",
			ProductType: "Accessories", Label: "Sticker", Price: "4.99",
			Description: "<p>Stick your design anywhere with a kiss-cut vinyl sticker.</p>" +
				"<ul><li>Durable vinyl</li><li>Bubble-free application</li></ul>",
		},
	})
}

// NewCatalog builds a catalog from entries. Entries without a position get the
// default print-area rectangle.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		e.Key = normalizeKey(e.Key)
		if e.Position == (printful.Position{}) {
			e.Position = defaultPosition
		}
		c.entries[e.Key] = e
	}
	return c
}

// Lookup returns the entry for key.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	e, ok := c.entries[normalizeKey(key)]
	return e, ok
}

// Resolve maps keys to entries in order, dropping repeats. Every key must
// resolve; unknown keys are reported together.
func (c *Catalog) Resolve(keys []string) ([]Entry, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("mockup: at least one product is required: %w", domain.ErrUnknownProduct)
	}
	seen := make(map[string]bool, len(keys))
	entries := make([]Entry, 0, len(keys))
	var unknown []string
	for _, raw := range keys {
		key := normalizeKey(raw)
		if seen[key] {
			continue
		}
		seen[key] = true
		e, ok := c.entries[key]
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		entries = append(entries, e)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("mockup: %s: %w", strings.Join(unknown, ", "), domain.ErrUnknownProduct)
	}
	return entries, nil
}

// Entries returns every entry sorted by key.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
