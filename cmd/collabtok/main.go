package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/collabtok/collabtok/internal/config"
	"github.com/collabtok/collabtok/internal/db"
	"github.com/collabtok/collabtok/internal/session"
	"github.com/collabtok/collabtok/internal/store"
	"github.com/collabtok/collabtok/internal/sync"
	"github.com/collabtok/collabtok/internal/tiktok"
	"github.com/collabtok/collabtok/internal/web/handlers"
)

func main() {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	st := store.New(database)
	client := tiktok.NewClient(tiktok.Config{
		ClientKey:    cfg.TikTokClientKey,
		ClientSecret: cfg.TikTokClientSecret,
		RedirectURI:  cfg.TikTokRedirectURI,
	})
	sessions := session.NewManager(cfg.SessionSecret)
	syncer := sync.New(st, client)

	if cfg.SyncInterval > 0 {
		syncer.StartLoop(cfg.SyncInterval)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handlers.Health())

	// OAuth flow
	r.Get("/auth/start", handlers.StartAuth(client))
	r.Get("/auth/callback", handlers.Callback(st, client, sessions))
	r.Get("/auth/logout", handlers.Logout(sessions))

	// Sync
	r.Get("/cron/sync", handlers.CronSync(syncer, cfg.CronSecret))
	r.Post("/sync/refresh", handlers.Refresh(syncer, sessions))

	// Read path for the dashboard
	r.Get("/api/me", handlers.Me(st, sessions))

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("🚀 collabtok listening on http://%s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
