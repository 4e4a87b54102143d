package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restore/internal/catalog"
	"restore/internal/handler"
	"restore/internal/router"
	"restore/internal/service"

	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info().Msg("starting restore API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	productCache, err := a.buildCache(ctx)
	if err != nil {
		return err
	}
	images, err := a.buildImages(ctx)
	if err != nil {
		return err
	}
	coupons, err := a.buildCoupons(ctx)
	if err != nil {
		return err
	}
	publisher := a.buildPublisher()

	// Initialize services
	productService := service.NewProductService(a.products, productCache, images, publisher, logger)
	basketService := service.NewBasketService(a.baskets, a.products, coupons, a.buildPayments(), cfg.Basket.MaxWriteRetries, a.metrics, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, catalog.Limits{
			DefaultPageSize: cfg.Catalog.DefaultPageSize,
			MaxPageSize:     cfg.Catalog.MaxPageSize,
		}, logger),
		Search: handler.NewSearchHandler(a.search, productService, logger),
		Basket: handler.NewBasketHandler(basketService, cfg.Basket, logger),
		Chat:   handler.NewChatHandler(a.buildAssistant(), logger),
	}, router.Options{
		APIKey:       cfg.Auth.APIKey,
		AllowOrigins: cfg.Server.AllowOrigins,
		Metrics:      a.metrics,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
