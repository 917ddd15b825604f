package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"artcreator/internal/http/handlers"
	"artcreator/internal/middleware"
)

type Options struct {
	Logger          zerolog.Logger
	JWTSecret       string
	JWTAudience     string
	JWTIssuer       string
	CORSOrigins     []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.Country(opts.CountryLookup),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"route not found"}}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/image-sizes", app.ImageSizes)
		r.Get("/gallery", app.PublicGallery)
		r.Get("/stats", app.StatsSummary)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret, opts.JWTAudience, opts.JWTIssuer))

			r.Get("/me", app.Me)
			r.Get("/me/images", app.MyImages)

			r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/generations", app.CreateGeneration)
			r.Get("/generations/{id}", app.GetGeneration)
			r.Get("/generations/{id}/zip", app.GenerationZip)

			r.Post("/prompts/analyze", app.AnalyzePrompt)
			r.Post("/prompts/enhance", app.EnhancePrompt)
		})
	})

	return r
}
