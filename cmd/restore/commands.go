package main

import (
	"errors"
	"fmt"
	"io/fs"

	"restore/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	envFile      string
	seedIfEmpty  bool
	couponOutDir string

	cfg    *config.Config
	logger zerolog.Logger

	rootCmd = &cobra.Command{
		Use:           "restore",
		Short:         "Storefront API: catalog, guest baskets, payments and product search",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}

			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			logger = config.NewLogger(cfg.Logger).With().Str("command", cmd.Name()).Logger()
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in serve.go
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE:  runMigrate, // Defined in maintenance.go
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the reference product catalog",
		Args:  cobra.NoArgs,
		RunE:  runSeed, // Defined in maintenance.go
	}

	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the product search index from the database",
		Args:  cobra.NoArgs,
		RunE:  runReindex, // Defined in maintenance.go
	}

	indexWorkerCmd = &cobra.Command{
		Use:   "index-worker",
		Short: "Consume product events from Kafka and keep the search index in sync",
		Args:  cobra.NoArgs,
		RunE:  runIndexWorker, // Defined in worker.go
	}

	couponsCmd = &cobra.Command{
		Use:   "coupons",
		Short: "Coupon file utilities",
	}
	couponsGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Write sample gzipped coupon files",
		Args:  cobra.NoArgs,
		RunE:  runCouponsGenerate, // Defined in coupons.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	seedCmd.Flags().BoolVar(&seedIfEmpty, "if-empty", true, "only seed when the products table is empty")
	couponsGenerateCmd.Flags().StringVar(&couponOutDir, "out", "data/coupons", "directory to write coupon files into")

	couponsCmd.AddCommand(couponsGenerateCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, reindexCmd, indexWorkerCmd, couponsCmd)
}
