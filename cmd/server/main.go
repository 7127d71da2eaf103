package main

import (
	"log"
	"net/http"

	"pricehawk/internal/api"
	"pricehawk/internal/backend"
	"pricehawk/internal/config"
	"pricehawk/internal/dashboard"
	"pricehawk/internal/session"
)

func main() {
	cfg := config.Load()

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)

	sessions, err := session.NewManager(client, cfg.HistoryLimit)
	if err != nil {
		log.Fatal("Failed to initialize session manager:", err)
	}
	defer sessions.Close()

	app := &api.App{
		Sessions:  sessions,
		Dashboard: dashboard.NewService(client),
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Comparison backend: %s", cfg.BackendBaseURL)
	log.Printf("Backend timeout: %s", cfg.BackendTimeout)
	log.Printf("History limit: %d entries per session", cfg.HistoryLimit)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
