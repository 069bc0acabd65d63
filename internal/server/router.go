package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loancalc/internal/handlers"
	"loancalc/internal/loan"
	"loancalc/internal/observability"
)

func NewRouter(svc *loan.Service) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	loan.RegisterRoutes(r, loan.NewHandler(svc))

	return r
}
