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
// The health endpoint is unauthenticated; everything else requires the gateway
// bearer token. Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))

		r.Route("/api/v1/sessions/{clientID}", func(r chi.Router) {
			r.Post("/", handlers.Login)
			r.Delete("/", handlers.Logout)
		})

		r.Route("/api/v1/planner/{clientID}", func(r chi.Router) {
			r.Get("/", handlers.Status)
			r.Delete("/", handlers.Close)
			r.Post("/submit", handlers.Submit)
			r.Post("/navigate", handlers.Navigate)
			r.Post("/save", handlers.Save)
		})

		r.Route("/api/v1/itineraries", func(r chi.Router) {
			r.Get("/", handlers.ListItineraries)
			r.Get("/{id}", handlers.GetItinerary)
			r.Delete("/{id}", handlers.DeleteItinerary)
			r.Get("/{id}/export", handlers.ExportItinerary)
		})

		r.Get("/api/v1/catalog/categories", handlers.Categories)
		r.Get("/api/v1/catalog/districts", handlers.Districts)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
