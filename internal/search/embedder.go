package search

import (
	"context"
	"errors"
	"fmt"

	"restore/internal/config"
	"restore/internal/observability"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// NewOpenAIClient builds the client shared by embeddings and chat.
func NewOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

type openAIEmbedder struct {
	client  *openai.Client
	model   string
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewOpenAIEmbedder creates an Embedder backed by the OpenAI embeddings API.
func NewOpenAIEmbedder(client *openai.Client, model string, metrics *observability.Metrics, logger zerolog.Logger) Embedder {
	return &openAIEmbedder{
		client:  client,
		model:   model,
		metrics: metrics,
		logger:  logger.With().Str("component", "embedder").Logger(),
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err == nil && len(resp.Data) == 0 {
		err = errors.New("empty embedding response")
	}
	e.metrics.CollaboratorCall("embeddings", err)

	if err != nil {
		e.logger.Error().Err(err).Str("model", e.model).Msg("embedding request failed")
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	return resp.Data[0].Embedding, nil
}
