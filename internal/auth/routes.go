package auth

import (
	"github.com/go-chi/chi/v5"

	"calc-service/internal/session"
)

// RegisterRoutes mounts the auth endpoints under the /auth prefix. Logout
// is the only one requiring an existing session.
func (h *Handlers) RegisterRoutes(r chi.Router, sessions *session.Manager) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(session.Require(sessions))
			r.Post("/logout", h.Logout)
		})
	})
}
