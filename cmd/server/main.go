package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/card-resolver/internal/api"
	"github.com/codyseavey/card-resolver/internal/api/handlers"
	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/config"
	"github.com/codyseavey/card-resolver/internal/database"
	"github.com/codyseavey/card-resolver/internal/logging"
	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/pricing"
	"github.com/codyseavey/card-resolver/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Component("server").Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		logging.Component("server").Fatalf("Failed to configure logging: %v", err)
	}
	log := logging.Component("server")

	// Initialize database
	if err := database.Initialize(cfg.Database.Path, cfg.Database.Debug); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := database.NewStore(database.GetDB())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optionally seed the catalog from JSON/YAML files on startup
	if cfg.Catalog.SeedDir != "" {
		records, err := catalog.LoadDir(cfg.Catalog.SeedDir)
		if err != nil {
			log.Fatalf("Failed to load catalog seed files: %v", err)
		}
		n, err := store.Upsert(ctx, records)
		if err != nil {
			log.Fatalf("Failed to import catalog seed files: %v", err)
		}
		log.WithField("records", n).Info("imported catalog seed files")
	}
	if err := store.UpdateMetrics(ctx); err != nil {
		log.WithError(err).Warn("failed to count catalog records")
	}

	tuning, err := matching.LoadTuning(cfg.Matching.TuningFile)
	if err != nil {
		log.Fatalf("Failed to load matching tuning: %v", err)
	}
	registry, err := matching.NewRegistry(store, tuning, &matching.Coalescer{})
	if err != nil {
		log.Fatalf("Failed to build resolvers: %v", err)
	}

	// Pricing is optional: without an API key the price endpoints answer 503
	var sportsSource, tcgSource pricing.ProductSource
	if cfg.PricingEnabled() {
		sportsSource = newPricingClient(cfg.Pricing, cfg.Pricing.SportsBaseURL, "sportscardspro")
		tcgSource = newPricingClient(cfg.Pricing, cfg.Pricing.TCGBaseURL, "pricecharting")
	} else {
		log.Warn("pricing API key not set, price matching disabled")
	}
	pricingService := pricing.NewService(sportsSource, tcgSource)

	router := api.SetupRouter(api.Dependencies{
		Identifier:     registry,
		Store:          store,
		Pricing:        pricingService,
		Valuation:      services.NewValuationService(registry, pricingService),
		PriceCache:     handlers.NewPriceCache(cfg.Cache.Size, cfg.Cache.TTL),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func newPricingClient(cfg config.PricingConfig, baseURL, name string) *pricing.Client {
	return pricing.NewClient(pricing.ClientConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Timeout:     cfg.Timeout,
		Retries:     cfg.Retries,
		MinInterval: cfg.MinInterval,
		Name:        name,
	})
}
