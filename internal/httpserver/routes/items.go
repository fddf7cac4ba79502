package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/mw"
)

func init() { Register(registerItems) }

func registerItems(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/items", handlers.ListItems(d))
		r.Get("/history", handlers.History(d))
		r.Get("/categories", handlers.Categories(d))

		// Mutations share one bucket per client
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.RateLimitBurst,
				RefillPerIPPerMin: d.RateLimitPerMin,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
			}))

			r.Post("/items", handlers.AddItem(d))
			r.Delete("/items", handlers.ClearItems(d))
			r.Delete("/items/{id}", handlers.RemoveItem(d))
			r.Post("/undo", handlers.Undo(d))
		})
	})
}
