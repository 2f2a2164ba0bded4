package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/reservenow/backend/internal/adapters/catalog"
	"github.com/reservenow/backend/internal/adapters/database"
	"github.com/reservenow/backend/internal/infrastructure/clients/postgres"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	"github.com/reservenow/backend/pkg/config"
	"github.com/reservenow/backend/pkg/secrets"
)

// seed copies a catalog file (the embedded one by default) into PostgreSQL
func main() {
	var path string
	var dryRun bool

	flag.StringVar(&path, "file", "", "Catalog JSON file; empty uses the bundled catalog")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the catalog without writing")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv("")); err != nil {
		observability.InitLogger("reservenow-seed", "development")
		log.Fatal().Err(err).Msg("failed to load secrets from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		observability.InitLogger("reservenow-seed", "development")
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("reservenow-seed", cfg.Server.Env)

	restaurants, err := catalog.NewJSONSource(path).LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("failed to read catalog")
	}
	log.Info().Int("restaurants", len(restaurants)).Msg("catalog validated")

	if dryRun {
		return
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	adapter := database.NewRestaurantAdapter(pgClient, nil)
	if err := adapter.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create restaurants table")
	}

	start := time.Now()
	written, err := adapter.Upsert(ctx, restaurants)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	log.Info().Int("written", written).Dur("duration", time.Since(start)).Msg("seed complete")
}
