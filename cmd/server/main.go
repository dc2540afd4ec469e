// Package main is the entry point for the dynamic pricing server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/api"
	"github.com/hotel-pricing-engine/backend/internal/cache"
	"github.com/hotel-pricing-engine/backend/internal/config"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/scheduler"
	"github.com/hotel-pricing-engine/backend/internal/storage"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Health check mode for Docker HEALTHCHECK
	if cfg.HealthCheck {
		if err := runHealthCheck(cfg.Addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting pricing engine (version: %s)...", version)

	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	applied, err := storage.RunMigrations(context.Background(), db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Database migrations complete (%d applied)", applied)

	store := storage.NewStore(db)
	if cfg.Seed {
		if _, err := storage.Seed(context.Background(), store); err != nil {
			log.Printf("Warning: Failed to seed demo data: %v", err)
		}
	}

	hub := websocket.NewHub()
	go hub.Run()

	eng := engine.New(engine.Config{
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		Cache:               cache.New(),
	}, store.Collaborators())

	jobs := scheduler.New(scheduler.Config{
		SnapshotSchedule: cfg.SnapshotSchedule,
		SweepSchedule:    cfg.CacheSweepSchedule,
	}, eng, store.Rooms, store.Snapshots, hub)
	if err := jobs.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	router := api.NewRouter(api.Services{
		DB:          db,
		Engine:      eng,
		Hub:         hub,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	jobs.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	hub.Stop()

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://localhost" + addr + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
