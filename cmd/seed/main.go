package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"glamgo/internal/config"
	"glamgo/internal/database"
	"glamgo/internal/model"
	"glamgo/internal/repository"
)

//go:embed products.json
var catalogJSON []byte

const defaultVendor = "GLAMGO Vendor"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	catalogPath := flag.String("catalog", "", "Path to a product catalogue JSON file (defaults to the built-in catalogue)")
	flag.Parse()

	data := catalogJSON
	if *catalogPath != "" {
		b, err := os.ReadFile(filepath.Clean(*catalogPath))
		if err != nil {
			return fmt.Errorf("failed to read catalogue %s: %w", *catalogPath, err)
		}
		data = b
	}

	products, err := loadCatalog(data, time.Now().UTC())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	repo := repository.NewProductRepository(pool, logger)

	failed := 0
	for i := range products {
		p := &products[i]
		if err := repo.Upsert(ctx, p); err != nil {
			failed++
			logger.Error().Err(err).Str("product_id", p.ID).Str("name", p.Name).Msg("failed to seed product")
			continue
		}
		logger.Info().Str("product_id", p.ID).Str("category", string(p.Category)).Msg("seeded product")
	}

	logger.Info().
		Int("seeded", len(products)-failed).
		Int("failed", failed).
		Msg("catalogue seeding complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d products failed to seed", failed, len(products))
	}
	return nil
}

// loadCatalog decodes the seed catalogue and fills in vendor and timestamp
// fields. Every product must carry an id, a known category and non-negative
// stock and price.
func loadCatalog(data []byte, now time.Time) ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalogue: %w", err)
	}

	seen := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]

		switch {
		case p.ID == "":
			return nil, fmt.Errorf("seed product %d has no id", i)
		case seen[p.ID]:
			return nil, fmt.Errorf("duplicate seed product id %s", p.ID)
		case !p.Category.Valid():
			return nil, fmt.Errorf("seed product %s has unknown category %q", p.ID, p.Category)
		case p.StockQuantity < 0 || p.Price < 0:
			return nil, fmt.Errorf("seed product %s has negative price or stock", p.ID)
		}
		seen[p.ID] = true

		p.VendorName = defaultVendor
		if p.Brand != nil && *p.Brand != "" {
			p.VendorName = *p.Brand
		}
		p.VendorID = vendorID(p.VendorName)
		if p.ImageURLs == nil {
			p.ImageURLs = []string{}
		}
		p.CreatedAt = now
		p.UpdatedAt = now
	}

	return products, nil
}

// vendorID derives a stable vendor identifier from a vendor name.
func vendorID(name string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	return "vendor-" + slug
}
