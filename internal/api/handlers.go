package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pricehawk/internal/dashboard"
	"pricehawk/internal/display"
	"pricehawk/internal/history"
	"pricehawk/internal/models"
	"pricehawk/internal/session"
)

type App struct {
	Sessions  *session.Manager
	Dashboard *dashboard.Service
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// handle resolves the session a request addresses: the one named in the
// route, or the default session when the route carries no session id.
func (app *App) handle(r *http.Request) (*session.Handle, bool) {
	id := chi.URLParam(r, "sessionID")
	if id == "" {
		return app.Sessions.Default(), true
	}
	return app.Sessions.Get(id)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (app *App) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := app.Sessions.Create()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": handle.ID})
}

func (app *App) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := app.Sessions.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) CompareHandler(w http.ResponseWriter, r *http.Request) {
	handle, ok := app.handle(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	flipkartURL := r.URL.Query().Get("flipkart_url")
	amazonURL := r.URL.Query().Get("amazon_url")

	done := handle.Session.Submit(r.Context(), flipkartURL, amazonURL)
	select {
	case <-done:
	case <-r.Context().Done():
		return
	}

	snap := handle.Session.State()
	switch {
	case snap.Phase == session.PhaseSuccess:
		writeJSON(w, http.StatusOK, snap.Result)
	case snap.Phase == session.PhasePending:
		// A newer submission superseded this one before it resolved.
		writeError(w, http.StatusConflict, "Superseded by a newer comparison")
	case snap.ErrorKind == session.ErrorValidation:
		writeError(w, http.StatusBadRequest, snap.ErrorMessage)
	case snap.ErrorKind == session.ErrorBackendUnavailable:
		writeError(w, http.StatusBadGateway, snap.ErrorMessage)
	default:
		// Domain-level failures ride a 200 like the original backend.
		writeError(w, http.StatusOK, snap.ErrorMessage)
	}
}

// productView carries the display-ready values the view layer derives from
// a product: its star decomposition and how many reviews to surface.
type productView struct {
	Stars          *display.StarRating `json:"stars,omitempty"`
	TotalReviews   int                 `json:"total_reviews"`
	VisibleReviews int                 `json:"visible_reviews"`
	Expanded       bool                `json:"expanded"`
}

func (app *App) StateHandler(w http.ResponseWriter, r *http.Request) {
	handle, ok := app.handle(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	snap := handle.Session.State()
	resp := struct {
		session.Snapshot
		Display map[models.Platform]productView `json:"display,omitempty"`
	}{Snapshot: snap}

	if snap.Result != nil {
		resp.Display = make(map[models.Platform]productView)
		for _, platform := range []models.Platform{models.PlatformFlipkart, models.PlatformAmazon} {
			product := snap.Result.Product(platform)
			if product == nil {
				continue
			}

			view := productView{
				TotalReviews:   len(product.Reviews),
				VisibleReviews: handle.Toggles.VisibleCount(platform, len(product.Reviews)),
				Expanded:       handle.Toggles.IsExpanded(platform),
			}
			if stars, ok := display.DecomposeRating(product.Rating); ok {
				view.Stars = &stars
			}
			resp.Display[platform] = view
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	handle, ok := app.handle(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	entries, err := handle.History.All()
	if err != nil {
		log.Printf("[API] Failed to read history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

func (app *App) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	handle, ok := app.handle(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	entries, err := handle.History.All()
	if err != nil {
		log.Printf("[API] Failed to read history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":  dashboard.ComputeLocal(entries),
		"remote": app.Dashboard.Fetch(r.Context()),
	})
}

func (app *App) ToggleReviewsHandler(w http.ResponseWriter, r *http.Request) {
	handle, ok := app.handle(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	platform := models.Platform(chi.URLParam(r, "platform"))
	if platform != models.PlatformFlipkart && platform != models.PlatformAmazon {
		writeError(w, http.StatusBadRequest, "Unknown platform")
		return
	}

	expanded := handle.Toggles.Toggle(platform)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"platform": platform,
		"expanded": expanded,
	})
}
