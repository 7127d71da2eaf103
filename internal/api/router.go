package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	// Routes the original single-session client calls, served by the
	// default session.
	r.Get("/api/compare", app.CompareHandler)
	r.Get("/api/state", app.StateHandler)
	r.Get("/api/history", app.HistoryHandler)
	r.Get("/api/dashboard", app.DashboardHandler)
	r.Post("/api/reviews/{platform}/toggle", app.ToggleReviewsHandler)

	r.Post("/api/sessions", app.CreateSessionHandler)
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", app.DeleteSessionHandler)
		r.Get("/compare", app.CompareHandler)
		r.Get("/state", app.StateHandler)
		r.Get("/history", app.HistoryHandler)
		r.Get("/dashboard", app.DashboardHandler)
		r.Post("/reviews/{platform}/toggle", app.ToggleReviewsHandler)
	})

	return r
}
