package main

import (
	"context"
	"fmt"

	"restore/internal/database"
	"restore/internal/repository"

	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	return database.Migrate(ctx, pool, logger)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	n, err := seedProducts(ctx, repository.NewProductRepository(pool, logger), seedIfEmpty)
	if err != nil {
		return err
	}
	logger.Info().Int("count", n).Msg("seeded products")
	return nil
}

// seedProducts inserts the reference catalog. With ifEmpty set, an existing
// catalog is left untouched.
func seedProducts(ctx context.Context, repo repository.ProductRepository, ifEmpty bool) (int, error) {
	if ifEmpty {
		existing, err := repo.ListAll(ctx)
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			logger.Info().Int("existing", len(existing)).Msg("catalog already populated, skipping seed")
			return 0, nil
		}
	}

	products := database.ReferenceProducts()
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", products[i].Name, err)
		}
	}
	return len(products), nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	if !cfg.Search.Enabled {
		return fmt.Errorf("search is disabled; set SEARCH_ENABLED=true")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.search.ReindexAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex stopped after %d products: %w", count, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully indexed %d products\n", count)
	return nil
}
