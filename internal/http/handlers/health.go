package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogItem struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	ProductType string `json:"productType"`
	Price       string `json:"price"`
}

// Catalog lists the product keys accepted by the mockup endpoints.
func (a *App) ListCatalog(w http.ResponseWriter, r *http.Request) {
	entries := a.Catalog.Entries()
	items := make([]catalogItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, catalogItem{Key: e.Key, Label: e.Label, ProductType: e.ProductType, Price: e.Price})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "defaults": a.DefaultProducts})
}
