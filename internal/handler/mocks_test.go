package handler

import (
	"context"

	"restore/internal/catalog"
	"restore/internal/imagestore"
	"restore/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, params catalog.Params) (catalog.Page, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(catalog.Page), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Filters(ctx context.Context) (model.ProductFilters, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ProductFilters), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input model.ProductInput, image *imagestore.Upload) (*model.Product, error) {
	args := m.Called(ctx, input, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, input model.ProductInput, image *imagestore.Upload) (*model.Product, error) {
	args := m.Called(ctx, input, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBasketService is a mock implementation of BasketService.
type MockBasketService struct {
	mock.Mock
}

func (m *MockBasketService) basket(args mock.Arguments) (*model.Basket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketService) Get(ctx context.Context, token string) (*model.Basket, error) {
	return m.basket(m.Called(ctx, token))
}

func (m *MockBasketService) AddItem(ctx context.Context, token string, productID int64, quantity int) (*model.Basket, bool, error) {
	args := m.Called(ctx, token, productID, quantity)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.Basket), args.Bool(1), args.Error(2)
}

func (m *MockBasketService) RemoveItem(ctx context.Context, token string, productID int64, quantity int) (*model.Basket, error) {
	return m.basket(m.Called(ctx, token, productID, quantity))
}

func (m *MockBasketService) ApplyCoupon(ctx context.Context, token, code string) (*model.Basket, error) {
	return m.basket(m.Called(ctx, token, code))
}

func (m *MockBasketService) RemoveCoupon(ctx context.Context, token string) (*model.Basket, error) {
	return m.basket(m.Called(ctx, token))
}

func (m *MockBasketService) CreateOrUpdatePaymentIntent(ctx context.Context, token string) (*model.Basket, error) {
	return m.basket(m.Called(ctx, token))
}

// MockSearchService is a mock implementation of search.Service.
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchResult), args.Error(1)
}

func (m *MockSearchService) IndexProduct(ctx context.Context, productID int64) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockSearchService) RemoveProduct(ctx context.Context, productID int64) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockSearchService) ReindexAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockAssistant is a mock implementation of assistant.Service.
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Reply(ctx context.Context, req model.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
