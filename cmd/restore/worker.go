package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"restore/internal/events"

	"github.com/spf13/cobra"
)

func runIndexWorker(cmd *cobra.Command, args []string) error {
	if !cfg.Search.Enabled {
		return fmt.Errorf("search is disabled; set SEARCH_ENABLED=true")
	}
	if cfg.Events.Mode != "kafka" {
		return fmt.Errorf("index-worker requires EVENTS_MODE=kafka")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	listener := events.NewListener(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.GroupID, a.search, a.metrics, logger)
	defer func() {
		if err := listener.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close listener")
		}
	}()

	logger.Info().
		Strs("brokers", cfg.Events.Brokers).
		Str("topic", cfg.Events.Topic).
		Str("group_id", cfg.Events.GroupID).
		Msg("index worker started")

	listener.Start(ctx)

	logger.Info().Msg("index worker stopped")
	return nil
}
