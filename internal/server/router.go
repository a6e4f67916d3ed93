package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"calc-service/internal/auth"
	"calc-service/internal/calculator"
	"calc-service/internal/handlers"
	"calc-service/internal/observability"
	"calc-service/internal/session"
)

// Deps is everything the router needs wired in.
type Deps struct {
	Auth       *auth.Handlers
	Calculator *calculator.Handlers
	Sessions   *session.Manager
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	deps.Auth.RegisterRoutes(r, deps.Sessions)
	deps.Calculator.RegisterRoutes(r, deps.Sessions)

	return r
}
