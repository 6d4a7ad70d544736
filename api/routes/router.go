// Package routes assembles the chi router for the staff API.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vittoria-dev/menu-engine/api/controllers"
	"github.com/vittoria-dev/menu-engine/api/middleware"
	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/internal/session"
	"github.com/vittoria-dev/menu-engine/pkg/config"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// Deps carries everything the router needs.
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	Manager  *session.Manager
	Catalog  catalog.Provider
	Health   map[string]controllers.Pinger
	Registry *prometheus.Registry
}

// New builds the full route tree.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.Recoverer(deps.Log))

	health := controllers.NewHealthController(deps.Log, deps.Health)
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	sessions := controllers.NewSessionController(deps.Manager, deps.Catalog, deps.Log)
	shortcuts := controllers.NewShortcutController(deps.Manager, deps.Log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Config.JWT, deps.Log))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Open)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessions.Get)
				r.Delete("/", sessions.Cancel)
				r.Put("/size", sessions.SelectSize)
				r.Post("/ingredients/{ingredientID}/toggle", sessions.ToggleIncluded)
				r.Post("/extras/{ingredientID}/toggle", sessions.ToggleExtra)
				r.Post("/quantity", sessions.AdjustQuantity)
				r.Put("/note", sessions.SetNote)
				r.Post("/activate", sessions.Activate)
				r.Get("/recommendations", sessions.Recommendations)
				r.Post("/commit", sessions.Commit)
			})
		})

		r.Route("/shortcuts", func(r chi.Router) {
			r.Post("/keys", shortcuts.PressKey)
			r.Post("/escape", shortcuts.Escape)
		})
	})

	return r
}
