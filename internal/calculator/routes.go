package calculator

import (
	"github.com/go-chi/chi/v5"

	"calc-service/internal/session"
)

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix. Every route requires a session token.
func (h *Handlers) RegisterRoutes(r chi.Router, sessions *session.Manager) {
	r.Route("/calculator", func(r chi.Router) {
		r.Use(session.Require(sessions))
		r.Post("/press", h.Press)
		r.Get("/state", h.State)
		r.Get("/history", h.History)
		r.Post("/evaluate", h.Evaluate)
	})
}
