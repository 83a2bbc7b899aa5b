package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calderonm/spinqueue/internal/app"
	"github.com/calderonm/spinqueue/internal/broadcast"
	"github.com/calderonm/spinqueue/internal/config"
	"github.com/calderonm/spinqueue/internal/constants"
	httpapp "github.com/calderonm/spinqueue/internal/http"
	"github.com/calderonm/spinqueue/internal/identity"
	"github.com/calderonm/spinqueue/internal/logger"
	"github.com/calderonm/spinqueue/internal/store"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize Ledger and change-feed
	ledger, feed, err := store.Open(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to init store", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	// Probe the ledger so a bad connection string fails loudly at boot.
	if _, err := ledger.ListAll(context.Background()); err != nil {
		appLogger.Error("Ledger connection check failed", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Ledger connected", "driver", cfg.DBDriver)

	// Initialize Broadcast Hub
	hub := broadcast.NewHub(appLogger)

	// Bridge the store change-feed into the hub alongside direct API
	// events. Dashboards de-duplicate between the two channels.
	if !cfg.FeedDisabled {
		feed.Start()
		defer feed.Stop()
		go func() {
			for ev := range feed.Events() {
				hub.Publish(ev)
			}
		}()
	}

	// Initialize Identity client and Services
	idClient := identity.NewClient(cfg.AuthURL, cfg.AuthAPIKey)
	requestService := app.NewRequestService(ledger, hub, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpapp.CORS)

	// Routes
	h := httpapp.NewHandler(requestService, hub, idClient, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
