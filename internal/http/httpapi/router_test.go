package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/http/handlers"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/mockup"

	"github.com/rs/zerolog"
)

func newTestRouter() http.Handler {
	app := &handlers.App{Catalog: mockup.DefaultCatalog(), DefaultProducts: []string{"mug"}}
	return NewRouter(app, Options{Logger: zerolog.Nop(), AllowedOrigins: []string{"*"}, RateLimitPerMin: 1})
}

func TestRouterServesHealthAndCatalog(t *testing.T) {
	h := newTestRouter()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", rr.Code)
	}
	var body struct {
		Items []struct {
			Key   string `json:"key"`
			Price string `json:"price"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(body.Items) != 10 {
		t.Fatalf("catalog items = %d, want 10", len(body.Items))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	if rr.Code != http.StatusOK || !json.Valid(rr.Body.Bytes()) {
		t.Fatalf("openapi status = %d", rr.Code)
	}
}

func TestRouterRateLimitIgnoresForwardedHeaderByDefault(t *testing.T) {
	h := newTestRouter()
	var codes []int
	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/mockups", nil)
		req.RemoteAddr = "203.0.113.6:9000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want second request limited", codes)
	}
}

func TestRouterTrustProxyKeysOnForwardedClient(t *testing.T) {
	app := &handlers.App{Catalog: mockup.DefaultCatalog(), DefaultProducts: []string{"mug"}}
	h := NewRouter(app, Options{Logger: zerolog.Nop(), RateLimitPerMin: 1, TrustProxy: true})
	var codes []int
	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.1"} {
		req := httptest.NewRequest(http.MethodPost, "/api/mockups", nil)
		req.RemoteAddr = "10.0.0.2:9000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusBadRequest || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [400 400 429]", codes)
	}
}

func TestRouterRateLimitsWriteEndpoints(t *testing.T) {
	h := newTestRouter()
	var codes []int
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/mockups", nil)
		req.RemoteAddr = "203.0.113.5:9000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [400 429]", codes)
	}
}
