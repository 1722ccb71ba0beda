package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"siegefield-server/api"
	"siegefield-server/config"
	game "siegefield-server/src"
)

func main() {
	rand.Seed(time.Now().UnixNano())

	// Local overrides; missing file is fine in production.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env overrides.")
	}
	cfg := config.LoadConfig()

	// Core simulation server
	s := game.NewGameServer(cfg)
	s.Run()

	// API setup
	apiCfg := api.LoadConfig()

	r := chi.NewRouter()

	// Viewer frontend, REST admin API, and the realtime socket.
	r.Handle("/*", game.StaticFileServer(cfg.StaticDir))
	r.Mount("/api", api.NewAPIRouter(apiCfg, s))
	r.HandleFunc("/ws", s.HandleConnections)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Printf("Server started on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ListenAndServe:", err)
	}
}
