// Package assistant answers shopper questions using a chat completion model
// grounded with catalog search results and store policies.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"restore/internal/model"
	"restore/internal/observability"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const (
	productContextSize = 5

	unavailableReply = "I apologize, but I'm having trouble connecting to my AI service right now. Please try again in a moment."
	errorReply       = "I apologize, but I encountered an error. Please try again."
	emptyReply       = "I'm not sure how to respond to that. Could you please rephrase your question?"
)

var productKeywords = []string{"product", "buy", "looking for", "recommend", "show me", "find"}

// Searcher finds catalog products relevant to a message.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error)
}

// Service produces assistant replies.
type Service interface {
	Reply(ctx context.Context, req model.ChatRequest) (string, error)
}

type service struct {
	client    *openai.Client
	searcher  Searcher
	model     string
	maxTokens int
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewService creates an assistant backed by the chat completions API.
func NewService(client *openai.Client, searcher Searcher, chatModel string, maxTokens int, metrics *observability.Metrics, logger zerolog.Logger) Service {
	return &service{
		client:    client,
		searcher:  searcher,
		model:     chatModel,
		maxTokens: maxTokens,
		metrics:   metrics,
		logger:    logger.With().Str("service", "assistant").Logger(),
	}
}

// Reply never fails once the message is valid: completion errors are logged
// and turned into an apology.
func (s *service) Reply(ctx context.Context, req model.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", model.ErrEmptyChatMessage
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.ConversationHistory)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(s.productContext(ctx, message)),
	})
	messages = append(messages, history(req.ConversationHistory)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: 0.7,
		TopP:        0.95,
	})
	s.metrics.CollaboratorCall("chat", err)

	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
			s.logger.Error().Err(err).Msg("chat completion rejected")
			return unavailableReply, nil
		}
		s.logger.Error().Err(err).Msg("chat completion failed")
		return errorReply, nil
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return emptyReply, nil
	}
	return resp.Choices[0].Message.Content, nil
}

type productSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Brand       string  `json:"brand"`
	Type        string  `json:"type"`
	Stock       int     `json:"stock"`
	Score       float32 `json:"score"`
}

// productContext returns the JSON summary of the top matches when the
// message is about products. Search failures yield no context.
func (s *service) productContext(ctx context.Context, message string) string {
	if !mentionsProducts(message) {
		return ""
	}

	results, err := s.searcher.Search(ctx, message, productContextSize)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not fetch product context")
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	summaries := make([]productSummary, len(results))
	for i, r := range results {
		summaries[i] = productSummary{
			ID:          r.Product.ID,
			Name:        r.Product.Name,
			Description: r.Product.Description,
			Price:       r.Product.Price,
			Brand:       r.Product.Brand,
			Type:        r.Product.Type,
			Stock:       r.Product.QuantityInStock,
			Score:       r.Score,
		}
	}

	b, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func mentionsProducts(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range productKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// history maps prior turns onto chat roles. Unknown roles are skipped.
func history(turns []model.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		switch strings.ToLower(t.Role) {
		case "user":
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: t.Text})
		case "model", "assistant":
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: t.Text})
		}
	}
	return out
}

// Disabled is used when the chat assistant is switched off.
type Disabled struct{}

func (Disabled) Reply(context.Context, model.ChatRequest) (string, error) {
	return "", model.ErrServiceUnavailable
}
