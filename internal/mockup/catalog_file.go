package mockup

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/providers/printful"
)

type fileCatalog struct {
	Products map[string]fileEntry `mapstructure:"products"`
}

type fileEntry struct {
	ProductID   int           `mapstructure:"product_id"`
	VariantID   int           `mapstructure:"variant_id"`
	Placement   string        `mapstructure:"placement"`
	ProductType string        `mapstructure:"product_type"`
	Label       string        `mapstructure:"label"`
	Description string        `mapstructure:"description"`
	Price       string        `mapstructure:"price"`
	Position    *filePosition `mapstructure:"position"`
}

type filePosition struct {
	AreaWidth  int `mapstructure:"area_width"`
	AreaHeight int `mapstructure:"area_height"`
	Width      int `mapstructure:"width"`
	Height     int `mapstructure:"height"`
	Top        int `mapstructure:"top"`
	Left       int `mapstructure:"left"`
}

// LoadCatalogFile reads product overrides from a YAML file and merges them over
// base. Fields left out of the file keep their base values; new keys must name
// a product id, a variant id and a placement.
func LoadCatalogFile(path string, base *Catalog) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("mockup: read catalog file: %w", err)
	}
	var file fileCatalog
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("mockup: decode catalog file: %w", err)
	}

	merged := make(map[string]Entry)
	if base != nil {
		for k, e := range base.entries {
			merged[k] = e
		}
	}
	for rawKey, fe := range file.Products {
		key := normalizeKey(rawKey)
		e, exists := merged[key]
		e.Key = key
		if fe.ProductID != 0 {
			e.ProductID = fe.ProductID
		}
		if fe.VariantID != 0 {
			e.VariantID = fe.VariantID
		}
		if fe.Placement != "" {
			e.Placement = fe.Placement
		}
		if fe.ProductType != "" {
			e.ProductType = fe.ProductType
		}
		if fe.Label != "" {
			e.Label = fe.Label
		}
		if fe.Description != "" {
			e.Description = fe.Description
		}
		if fe.Price != "" {
			e.Price = fe.Price
		}
		if fe.Position != nil {
			e.Position = printful.Position(*fe.Position)
		}
		if !exists && (e.ProductID == 0 || e.VariantID == 0 || e.Placement == "") {
			return nil, fmt.Errorf("mockup: catalog entry %q needs product_id, variant_id and placement", key)
		}
		if e.Label == "" {
			e.Label = key
		}
		merged[key] = e
	}

	entries := make([]Entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	return NewCatalog(entries), nil
}
