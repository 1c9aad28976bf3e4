package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public: no auth required.
	r.Get("/health", g.handleHealth())

	// Webhooks authenticate themselves.
	for _, path := range g.dispatcher.Paths() {
		r.Get(path, g.dispatcher.ServeHTTP)
		r.Post(path, g.dispatcher.ServeHTTP)
	}

	for _, m := range g.mounts {
		fs := http.StripPrefix(m.prefix, http.FileServer(http.Dir(m.dir)))
		r.Handle(m.prefix+"/*", fs)
	}

	if !g.config.Auth.IsConfigured() {
		r.Handle("/metrics", g.metrics.Handler())
		return r
	}

	// Admin endpoints: auth required. Not mounted if no auth configured.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(g.config.Auth, g.audit))
		r.Handle("/metrics", g.metrics.Handler())
		r.Get("/status", g.handleStatus())
		r.Route("/api", func(r chi.Router) {
			r.Get("/modules", g.handleGetAllModules())
			r.Get("/config", g.handleGetConfig())
		})
	})

	return r
}
