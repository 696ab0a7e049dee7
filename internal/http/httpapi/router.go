package httpapi

import (
	"net/http"
	"time"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/http/handlers"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options configures the middleware stack.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy bool
	// StaticDir, when set, is served under /static for the filesystem store.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Country(opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", app.ListCatalog)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", app.ListHistory)
			r.Get("/{id}", app.GetHistory)
			r.Delete("/{id}", app.DeleteHistory)
			r.Get("/{id}/archive", app.HistoryArchive)
		})

		// Endpoints that spend provider quota or storage are rate limited per IP.
		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			}
			r.Post("/upload-image", app.UploadImage)
			r.Post("/upload", app.UploadVideo)
			r.Post("/mockups", app.GenerateMockups)
			r.Post("/mockup-jobs", app.EnqueueMockups)
			r.Post("/create-shopify-product", app.CreateListing)
		})
	})

	return r
}
