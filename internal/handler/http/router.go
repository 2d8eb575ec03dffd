package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthResponse reports liveness and whether the durable backend answers.
// Durable false means requests are served from the fallback store.
type HealthResponse struct {
	Status  string `json:"status"`
	Durable bool   `json:"durable"`
}

// NewRouter mounts every handler behind the standard middleware stack.
func NewRouter(orders *OrderHandler, admin *AdminHandler, durableHealthy func(context.Context) bool) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Durable: durableHealthy(r.Context())})
	})

	orders.RegisterRoutes(router)
	admin.RegisterRoutes(router)

	return router
}
