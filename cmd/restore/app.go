package main

import (
	"context"
	"fmt"

	"restore/internal/assistant"
	"restore/internal/cache"
	"restore/internal/coupon"
	"restore/internal/database"
	"restore/internal/events"
	"restore/internal/imagestore"
	"restore/internal/observability"
	"restore/internal/payments"
	"restore/internal/repository"
	"restore/internal/search"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sashabaranov/go-openai"
)

// app holds the collaborators shared by the serve, reindex and worker commands.
type app struct {
	pool     *pgxpool.Pool
	metrics  *observability.Metrics
	products repository.ProductRepository
	baskets  repository.BasketRepository
	openai   *openai.Client
	search   search.Service

	closers []func() error
}

// newApp connects to the database and builds the search service. Other
// collaborators are built on demand by the commands that need them.
func newApp(ctx context.Context) (*app, error) {
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{
		pool:     pool,
		metrics:  observability.NewMetrics(),
		products: repository.NewProductRepository(pool, logger),
		baskets:  repository.NewBasketRepository(pool, logger),
	}
	if cfg.Search.Enabled || cfg.Chat.Enabled {
		a.openai = search.NewOpenAIClient(cfg.OpenAI)
	}

	a.search, err = a.buildSearch(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return a, nil
}

// Close releases collaborators in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn().Err(err).Msg("failed to close collaborator")
		}
	}
	a.pool.Close()
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) buildSearch(ctx context.Context) (search.Service, error) {
	if !cfg.Search.Enabled {
		logger.Info().Msg("vector search disabled")
		return search.Disabled{}, nil
	}

	client, err := search.NewWeaviateClient(cfg.Search.WeaviateHost, cfg.Search.WeaviateScheme)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize weaviate client: %w", err)
	}

	embedder := search.NewOpenAIEmbedder(a.openai, cfg.Search.EmbeddingModel, a.metrics, logger)
	index := search.NewWeaviateIndex(client, cfg.Search.ClassName, embedder, a.metrics, logger)
	if err := index.EnsureSchema(ctx); err != nil {
		// reindex creates the class if Weaviate was not reachable yet.
		logger.Warn().Err(err).Msg("failed to ensure search schema")
	}

	return search.NewService(index, a.products, search.Options{
		RatePerSec:  cfg.Search.IndexRatePerSec,
		Concurrency: cfg.Search.IndexConcurrency,
	}, logger), nil
}

func (a *app) buildCache(ctx context.Context) (cache.ProductCache, error) {
	if !cfg.Redis.Enabled {
		return cache.NopCache{}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	a.onClose(client.Close)

	return cache.NewRedisCache(client, cfg.Redis.CacheTTL, logger), nil
}

func (a *app) buildImages(ctx context.Context) (imagestore.Store, error) {
	if !cfg.S3.Enabled {
		logger.Info().Msg("image uploads disabled (S3 disabled)")
		return imagestore.Disabled{}, nil
	}

	store, err := imagestore.NewS3Store(ctx, imagestore.S3Options{
		Bucket:        cfg.S3.Bucket,
		Region:        cfg.S3.Region,
		Prefix:        cfg.S3.Prefix,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	}, a.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	return store, nil
}

// buildCoupons loads coupon files from S3 with a local file system fallback.
func (a *app) buildCoupons(ctx context.Context) (coupon.Resolver, error) {
	fileLoader := coupon.NewFileLoader(logger)
	couponLoader := fileLoader

	if cfg.Coupons.S3Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.Coupons.S3Bucket, cfg.Coupons.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			couponLoader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.Coupons.S3Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	resolver, err := coupon.NewResolver(ctx, cfg.Coupons.Files, couponLoader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize coupon resolver: %w", err)
	}
	a.onClose(resolver.Close)

	return resolver, nil
}

func (a *app) buildPayments() payments.Intents {
	if !cfg.Payments.Enabled {
		logger.Info().Msg("payments disabled")
		return payments.Disabled{}
	}
	return payments.NewStripeIntents(cfg.Payments.SecretKey, cfg.Payments.Currency, a.metrics, logger)
}

// buildPublisher picks in-process or Kafka delivery of product events. With
// search disabled there is nothing to keep in sync.
func (a *app) buildPublisher() events.Publisher {
	var publisher events.Publisher
	switch {
	case !cfg.Search.Enabled:
		publisher = events.Nop{}
	case cfg.Events.Mode == "kafka":
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, a.metrics, logger)
	default:
		publisher = events.NewLocalPublisher(a.search, cfg.Search.IndexTimeout, a.metrics, logger)
	}
	a.onClose(publisher.Close)
	return publisher
}

func (a *app) buildAssistant() assistant.Service {
	if !cfg.Chat.Enabled {
		logger.Info().Msg("shopping assistant disabled")
		return assistant.Disabled{}
	}
	return assistant.NewService(a.openai, a.search, cfg.Chat.Model, cfg.Chat.MaxTokens, a.metrics, logger)
}
