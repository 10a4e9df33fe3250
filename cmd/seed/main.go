package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/seed"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

const defaultTimeout = 10 * time.Minute

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	params := seed.DefaultParams()
	var (
		dsn     string
		migrate bool
	)

	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: STOREFRONT_POSTGRES_DSN)")
	flag.BoolVar(&migrate, "migrate", true, "apply pending migrations before seeding")
	flag.IntVar(&params.Products, "products", params.Products, "number of products to generate")
	flag.IntVar(&params.Stores, "stores", params.Stores, "number of stores to generate")
	flag.IntVar(&params.MinRowsPerStore, "min-rows", params.MinRowsPerStore, "minimum inventory rows per store")
	flag.IntVar(&params.MaxRowsPerStore, "max-rows", params.MaxRowsPerStore, "maximum inventory rows per store")
	flag.Uint64Var(&params.Seed, "seed", params.Seed, "random seed (same seed gives the same data)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("STOREFRONT_POSTGRES_DSN"))
	}
	if dsn == "" {
		log.Fatal("STOREFRONT_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.WithError(err).Fatal("open postgres store")
	}
	defer store.Close()

	if migrate {
		if err := store.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("apply migrations")
		}
	}

	logger := log.WithField("component", "seed")
	summary, err := seed.Run(ctx, postgres.NewCatalogSeeder(store), params, logger)
	if err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"categories": summary.Categories,
			"products":   summary.Products,
			"stores":     summary.Stores,
			"inventory":  summary.InventoryRows,
		}).Fatal("seed failed")
	}
}
