package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pawws/internal/http/handlers"
	"pawws/internal/infra"
	"pawws/internal/middleware"
)

// NewRouter assembles the HTTP surface. Moderation and catalog
// administration sit behind the admin gate; donation intake allows
// anonymous callers.
func NewRouter(
	app *handlers.App,
	cfg *infra.Config,
	logger zerolog.Logger,
	registry *prometheus.Registry,
	countryLookup middleware.CountryLookup,
) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N("en", countryLookup),
	)

	requireAuth := middleware.AuthJWT(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuthJWT(cfg.JWTSecret)
	intakeLimit := middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)

	// Health & metrics
	r.Get("/v1/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.With(requireAuth, middleware.RequireAdmin).Get("/stats/summary", app.StatsSummary)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", app.AuthSignup)
		r.Post("/login", app.AuthLogin)
		r.With(requireAuth).Get("/me", app.Me)
	})

	r.Route("/animals", func(r chi.Router) {
		r.Get("/", app.AnimalsList)
		r.Get("/{id}", app.AnimalsGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)
			r.Post("/", app.AnimalsCreate)
			r.Put("/{id}/status", app.AnimalsSetStatus)
			r.Put("/{id}/photo", app.AnimalsUploadPhoto)
			r.Post("/{id}/milestones", app.MilestonesCreate)
		})
	})

	r.Route("/milestones", func(r chi.Router) {
		r.Get("/{id}", app.MilestonesGet)
		r.With(optionalAuth, intakeLimit).Post("/{id}/donations", app.DonationsCreate)
		r.With(requireAuth, middleware.RequireAdmin).Put("/{id}/complete", app.MilestonesComplete)
	})

	r.Route("/donations", func(r chi.Router) {
		r.With(requireAuth).Get("/my", app.DonationsMy)
		r.With(requireAuth).Put("/{id}/proof", app.DonationsAttachProof)
		r.With(requireAuth).Get("/{id}/proof", app.DonationsProof)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)
			r.Get("/", app.DonationsList)
			r.Put("/{id}/status", app.DonationsDecide)
		})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/qr", app.PaymentQRGet)
		r.With(requireAuth, middleware.RequireAdmin).Put("/qr", app.PaymentQRPut)
	})

	return r
}
