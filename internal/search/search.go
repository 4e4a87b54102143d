// Package search indexes products in a vector store and answers semantic
// product queries.
package search

import (
	"context"
	"fmt"
	"strconv"

	"restore/internal/model"

	"github.com/google/uuid"
)

const (
	DefaultTopK = 10
	MaxTopK     = 50
)

// objectNamespace seeds the deterministic object IDs of indexed products.
var objectNamespace = uuid.MustParse("6f1c2b8e-4a0d-5e3f-9b71-2d4c8a6e0f13")

// Hit is a ranked match returned by an Index.
type Hit struct {
	ProductID int64
	Score     float32
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index stores product vectors and runs similarity queries.
type Index interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, productID int64) error
	Query(ctx context.Context, text string, topK int) ([]Hit, error)
}

// ProductReader is the product lookup needed to resolve hits and reindex.
type ProductReader interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// Service is the search facade used by handlers, events and the CLI.
type Service interface {
	Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error)
	IndexProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	ReindexAll(ctx context.Context) (int, error)
}

// SearchableText is the text embedded for a product.
func SearchableText(p model.Product) string {
	return fmt.Sprintf("%s. %s. Category: %s. Tags: %s, %s", p.Name, p.Description, p.Type, p.Brand, p.Type)
}

// ObjectID returns the stable vector store ID for a product.
func ObjectID(productID int64) string {
	return uuid.NewSHA1(objectNamespace, []byte(strconv.FormatInt(productID, 10))).String()
}

// ClampTopK maps non-positive values to DefaultTopK and caps at MaxTopK.
func ClampTopK(topK int) int {
	if topK < 1 {
		return DefaultTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

// Disabled is the Service used when vector search is switched off.
type Disabled struct{}

func (Disabled) Search(context.Context, string, int) ([]model.SearchResult, error) {
	return nil, model.ErrServiceUnavailable
}

func (Disabled) IndexProduct(context.Context, int64) error {
	return model.ErrServiceUnavailable
}

func (Disabled) RemoveProduct(context.Context, int64) error {
	return model.ErrServiceUnavailable
}

func (Disabled) ReindexAll(context.Context) (int, error) {
	return 0, model.ErrServiceUnavailable
}
