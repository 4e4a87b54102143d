package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"restore/internal/model"
	"restore/internal/observability"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

type weaviateIndex struct {
	client    *weaviate.Client
	className string
	embedder  Embedder
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewWeaviateClient connects to a Weaviate instance.
func NewWeaviateClient(host, scheme string) (*weaviate.Client, error) {
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return client, nil
}

// NewWeaviateIndex creates an Index storing one object per product in className.
func NewWeaviateIndex(client *weaviate.Client, className string, embedder Embedder, metrics *observability.Metrics, logger zerolog.Logger) Index {
	return &weaviateIndex{
		client:    client,
		className: className,
		embedder:  embedder,
		metrics:   metrics,
		logger:    logger.With().Str("component", "vector_index").Str("class", className).Logger(),
	}
}

// productClass describes the product class. Vectors are supplied by the embedder.
func productClass(name string) *models.Class {
	text := []string{"text"}
	return &models.Class{
		Class:       name,
		Description: "Catalog products for semantic search",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "productId", DataType: []string{"int"}},
			{Name: "name", DataType: text},
			{Name: "description", DataType: text},
			{Name: "type", DataType: text},
			{Name: "brand", DataType: text},
			{Name: "price", DataType: []string{"int"}},
			{Name: "pictureUrl", DataType: text},
			{Name: "quantityInStock", DataType: []string{"int"}},
		},
	}
}

// EnsureSchema creates the product class if it does not exist yet.
func (w *weaviateIndex) EnsureSchema(ctx context.Context) error {
	if _, err := w.client.Schema().ClassGetter().WithClassName(w.className).Do(ctx); err == nil {
		return nil
	}

	w.logger.Info().Msg("creating vector index class")
	if err := w.client.Schema().ClassCreator().WithClass(productClass(w.className)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %w", w.className, err)
	}
	return nil
}

func (w *weaviateIndex) Upsert(ctx context.Context, product model.Product) error {
	vector, err := w.embedder.Embed(ctx, SearchableText(product))
	if err != nil {
		return err
	}

	object := &models.Object{
		Class:  w.className,
		ID:     strfmt.UUID(ObjectID(product.ID)),
		Vector: vector,
		Properties: map[string]interface{}{
			"productId":       product.ID,
			"name":            product.Name,
			"description":     product.Description,
			"type":            product.Type,
			"brand":           product.Brand,
			"price":           product.Price,
			"pictureUrl":      product.PictureURL,
			"quantityInStock": product.QuantityInStock,
		},
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(object).Do(ctx)
	if err == nil {
		err = batchError(resp)
	}
	w.metrics.CollaboratorCall("vector_index", err)

	if err != nil {
		w.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to upsert product vector")
		return fmt.Errorf("failed to upsert product %d: %w", product.ID, err)
	}

	w.logger.Debug().Int64("product_id", product.ID).Msg("product indexed")
	return nil
}

func batchError(resp []models.ObjectsGetResponse) error {
	var messages []string
	for _, item := range resp {
		if item.Result == nil || item.Result.Errors == nil {
			continue
		}
		for _, e := range item.Result.Errors.Error {
			messages = append(messages, e.Message)
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return errors.New(strings.Join(messages, "; "))
}

// Delete removes a product's object. A missing object is not an error.
func (w *weaviateIndex) Delete(ctx context.Context, productID int64) error {
	err := w.client.Data().Deleter().
		WithClassName(w.className).
		WithID(ObjectID(productID)).
		Do(ctx)

	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) && clientErr.StatusCode == http.StatusNotFound {
		err = nil
	}
	w.metrics.CollaboratorCall("vector_index", err)

	if err != nil {
		w.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to delete product vector")
		return fmt.Errorf("failed to delete product %d from index: %w", productID, err)
	}
	return nil
}

func (w *weaviateIndex) Query(ctx context.Context, text string, topK int) ([]Hit, error) {
	vector, err := w.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	fields := []graphql.Field{
		{Name: "productId"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithFields(fields...).
		WithNearVector(w.client.GraphQL().NearVectorArgBuilder().WithVector(vector)).
		WithLimit(topK).
		Do(ctx)
	if err == nil && len(result.Errors) > 0 {
		err = errors.New(result.Errors[0].Message)
	}
	w.metrics.CollaboratorCall("vector_index", err)

	if err != nil {
		w.logger.Error().Err(err).Msg("vector query failed")
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	return parseHits(result.Data, w.className)
}

// parseHits reads Get.<class>[].{productId, _additional.certainty}.
func parseHits(data map[string]models.JSONObject, className string) ([]Hit, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected graphql response: missing Get")
	}
	rows, ok := get[className].([]interface{})
	if !ok {
		return []Hit{}, nil
	}

	hits := make([]Hit, 0, len(rows))
	for _, row := range rows {
		obj, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := obj["productId"].(float64)
		if !ok {
			continue
		}
		hit := Hit{ProductID: int64(id)}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				hit.Score = float32(certainty)
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
