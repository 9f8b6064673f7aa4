package rest

import "net/http"

// NewRouter registers all REST routes on a fresh ServeMux. Middleware is
// applied by the caller around the returned handler.
func NewRouter(cards *CardsHandler, settings *SettingsHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /health/live", health.Live)
	mux.HandleFunc("GET /health/ready", health.Ready)

	mux.HandleFunc("POST /api/cards", cards.Register)
	mux.HandleFunc("GET /api/cards", cards.List)
	mux.HandleFunc("GET /api/cards/{id}", cards.Get)
	mux.HandleFunc("DELETE /api/cards/{id}", cards.Delete)
	mux.HandleFunc("POST /api/review", cards.Review)
	mux.HandleFunc("POST /api/cards/{id}/ack", cards.Acknowledge)
	mux.HandleFunc("GET /api/cards/{id}/history", cards.History)
	mux.HandleFunc("GET /api/stats", cards.Stats)

	mux.HandleFunc("GET /api/settings", settings.Get)
	mux.HandleFunc("PUT /api/settings", settings.SetNotifications)

	return mux
}
