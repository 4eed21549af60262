package http

import (
	"net/http"

	"event-ingress-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	h := &handlers{app: application}

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/interactions", h.postInteraction)
		r.Post("/interactions/batch", h.postInteractionBatch)
		r.Put("/interactions/{interactionId}/participants", h.putParticipants)
		r.Put("/interactions/{interactionId}/watchers", h.putWatchers)
		r.Get("/interactions", h.listInteractions)
	})

	return r
}
