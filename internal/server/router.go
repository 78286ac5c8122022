// Package server assembles the HTTP API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/handlers"
	"github.com/joaograca03/CalcApp/internal/observability"
)

// NewRouter serves the calculator session together with /health and
// /metrics. Unknown routes answer with the same JSON error shape as the
// calculator endpoints.
func NewRouter(session *calculator.Session) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(observability.MetricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(session))

	return r
}
