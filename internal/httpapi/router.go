// Package httpapi exposes the engine over a thin JSON API. The mobile UI is
// the caller; all policy (warnings before restore, paywall gating of ranges)
// lives there.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"

	"tripwallet/internal/log"
	"tripwallet/internal/services"
)

func NewRouter(svc *services.Service, logger *slog.Logger) http.Handler {
	h := &handlers{svc: svc, logger: log.WithComponent(logger, log.ComponentHTTP)}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.RequestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.listExpenses)
			r.Post("/", h.createExpense)
			r.Get("/sum", h.sumHomeCurrency)
			r.Delete("/{id}", h.deleteExpense)
		})

		r.Get("/statistics", h.groupedStatistics)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", h.listTrips)
			r.Post("/", h.createTrip)
			r.Get("/active", h.activeTrip)
			r.Post("/{id}/activate", h.activateTrip)
			r.Delete("/{id}", h.deleteTrip)
		})

		r.Get("/countries", h.listCountries)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Delete("/{key}", h.deleteCategory)
		})

		r.Get("/rates", h.resolveRate)

		r.Get("/backup", h.dump)
		r.Post("/restore", h.restore)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/home-country", h.homeCountry)
			r.Put("/home-country", h.setHomeCountry)
			r.Get("/current-country", h.currentCountry)
			r.Put("/current-country", h.setCurrentCountry)
			r.Get("/subscription", h.subscription)
			r.Put("/subscription", h.setSubscription)
		})
	})

	return r
}
