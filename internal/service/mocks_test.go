package service

import (
	"context"

	"restore/internal/events"
	"restore/internal/imagestore"
	"restore/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBasketRepository is a mock implementation of BasketRepository.
type MockBasketRepository struct {
	mock.Mock
}

func (m *MockBasketRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBasketRepository) GetByToken(ctx context.Context, token string) (*model.Basket, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketRepository) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*model.Basket, error) {
	args := m.Called(ctx, tx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketRepository) Create(ctx context.Context, tx pgx.Tx, basket *model.Basket) error {
	args := m.Called(ctx, tx, basket)
	return args.Error(0)
}

func (m *MockBasketRepository) SaveIfVersion(ctx context.Context, tx pgx.Tx, basket *model.Basket, expected int64) error {
	args := m.Called(ctx, tx, basket, expected)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// newMockTx returns a transaction that accepts any Commit or Rollback.
func newMockTx() *MockTx {
	tx := new(MockTx)
	tx.On("Commit", mock.Anything).Return(nil).Maybe()
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()
	return tx
}

// MockCache is a mock implementation of cache.ProductCache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context) ([]model.Product, int64, bool) {
	args := m.Called(ctx)
	generation := args.Get(1).(int64)
	if args.Get(0) == nil {
		return nil, generation, args.Bool(2)
	}
	return args.Get(0).([]model.Product), generation, args.Bool(2)
}

func (m *MockCache) Set(ctx context.Context, products []model.Product, generation int64) {
	m.Called(ctx, products, generation)
}

func (m *MockCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

// MockImageStore is a mock implementation of imagestore.Store.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, upload imagestore.Upload) (*imagestore.Result, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*imagestore.Result), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.ProductEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockResolver is a mock implementation of coupon.Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockResolver) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockIntents is a mock implementation of payments.Intents.
type MockIntents struct {
	mock.Mock
}

func (m *MockIntents) CreateOrUpdate(ctx context.Context, basket *model.Basket) (*model.PaymentIntent, error) {
	args := m.Called(ctx, basket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntent), args.Error(1)
}
