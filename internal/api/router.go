package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Only the diagnostics endpoint requires bearer auth, and it is not mounted
// at all when token is empty. Rate limiting is applied globally: 60 requests
// per minute per IP. Routes that call providers run under an upstream
// deadline.
func NewRouter(handlers *Handlers, token string, upstreamTimeout time.Duration, db, redis pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandlerFunc(db, redis, handlers.keys, log))
		r.Get("/featured", handlers.Featured)
		r.Get("/searches/recent", handlers.RecentSearches)
		r.Get("/searches/popular", handlers.PopularSearches)

		r.Group(func(r chi.Router) {
			r.Use(Deadline(upstreamTimeout))
			r.Get("/destinations/{city}", handlers.GetDestination)
			r.Get("/places/{city}", handlers.Places)
			r.Get("/places/{city}/category/{category}", handlers.PlacesByCategory)
			r.Get("/search-places", handlers.SearchPlaces)

			if token != "" {
				r.Group(func(r chi.Router) {
					r.Use(BearerAuth(token))
					r.Get("/diagnostics/places", handlers.PlacesDiagnostics)
				})
			}
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
