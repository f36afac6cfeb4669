package main

import (
	"context"
	"log"
	"time"

	"github.com/labhub-io/labhub-go/client"
	"github.com/labhub-io/labhub-go/crud"
	"github.com/labhub-io/labhub-go/entity"
	"github.com/labhub-io/labhub-go/internal/config"
	"github.com/labhub-io/labhub-go/internal/logger"
)

func main() {
	// Load application config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	api, err := client.New(&client.Config{
		Address:    cfg.API.Address,
		APIKey:     cfg.API.Key,
		Timeout:    time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.API.MaxRetries,
	}, appLogger)
	if err != nil {
		log.Fatalf("❌ Client initialization failed: %v", err)
	}
	appLogger.Info().Str("address", cfg.API.Address).Msg("🚀 Client ready")

	ctx := context.Background()
	products := crud.NewRepository(api, entity.ProductsPath, entity.NewProduct, appLogger)
	results := products.Results(0, cfg.API.PageSize, nil)

	total, err := results.Len(ctx)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("could not resolve product count")
	}
	appLogger.Info().Int("total", total).Msg("products available")

	for p, err := range results.All(ctx) {
		if err != nil {
			appLogger.Fatal().Err(err).Msg("listing failed")
		}
		appLogger.Info().Str("id", p.ID).Str("code", p.Code).Str("name", p.Name).Msg("product")
	}
	appLogger.Info().Msg("✅ Done")
}
