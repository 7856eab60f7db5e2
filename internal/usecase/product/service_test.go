package product

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/repository/memory"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) StockState(ctx context.Context, id uuid.UUID) (*domain.StockState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockState), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCache) SetProduct(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of domain.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// mapCache is an in-process Cache used to replay interleavings
type mapCache struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Product
}

func newMapCache() *mapCache {
	return &mapCache{rows: make(map[uuid.UUID]domain.Product)}
}

func (c *mapCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (c *mapCache) SetProduct(ctx context.Context, product *domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[product.ID] = *product
	return nil
}

func (c *mapCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rows, productID)
	return nil
}

func (c *mapCache) has(productID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rows[productID]
	return ok
}

// interleavingRepository runs afterRead once, between a GetByID read and
// the caller receiving its result
type interleavingRepository struct {
	*memory.ProductRepository
	afterRead func()
}

func (r *interleavingRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id, includeDeleted)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return p, err
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(repo *MockProductRepository) *Service {
	return NewService(repo, nil, nil, logger.New("test"))
}

func TestService_Create_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	product := &domain.Product{
		Name:       "  Sourdough Loaf ",
		Price:      price("6.50"),
		TotalStock: 12,
	}

	mockRepo.On("Create", mock.Anything, product).Return(nil)

	err := service.Create(context.Background(), product)

	assert.NoError(t, err)
	assert.Equal(t, "Sourdough Loaf", product.Name)
	assert.Equal(t, 12, product.RemainingStock)
	mockRepo.AssertExpectations(t)
}

func TestService_Create_ZeroPriceAllowed(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	product := &domain.Product{Name: "Day-old Bread", Price: decimal.Zero, TotalStock: 0}
	mockRepo.On("Create", mock.Anything, product).Return(nil)

	assert.NoError(t, service.Create(context.Background(), product))
}

func TestService_Create_UpperBoundsAllowed(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	product := &domain.Product{Name: "Wedding Cake", Price: price("9999999999.99"), TotalStock: math.MaxInt32}
	mockRepo.On("Create", mock.Anything, product).Return(nil)

	assert.NoError(t, service.Create(context.Background(), product))
}

func TestService_Create_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		product *domain.Product
	}{
		{"empty name", &domain.Product{Name: "   ", Price: price("1.00"), TotalStock: 1}},
		{"negative price", &domain.Product{Name: "Bun", Price: price("-0.01"), TotalStock: 1}},
		{"negative stock", &domain.Product{Name: "Bun", Price: price("1.00"), TotalStock: -1}},
		{"sub-cent price", &domain.Product{Name: "Bun", Price: price("1.005"), TotalStock: 1}},
		{"price above column range", &domain.Product{Name: "Bun", Price: price("10000000000.00"), TotalStock: 1}},
		{"stock above column range", &domain.Product{Name: "Bun", Price: price("1.00"), TotalStock: 3_000_000_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := newTestService(mockRepo)

			err := service.Create(context.Background(), tt.product)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_GetByID_DerivesRemainingStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	productID := uuid.New()
	mockRepo.On("GetByID", mock.Anything, productID, false).
		Return(&domain.Product{ID: productID, Name: "Tart", TotalStock: 10, SoldQuantity: 4}, nil)

	product, err := service.GetByID(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, 6, product.RemainingStock)
	mockRepo.AssertExpectations(t)
}

func TestService_GetByID_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	productID := uuid.New()
	mockRepo.On("GetByID", mock.Anything, productID, false).Return(nil, domain.ErrNotFound)

	product, err := service.GetByID(context.Background(), productID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, product)
}

func TestService_GetByID_CacheHitUsesFreshLedger(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	service := NewService(mockRepo, mockCache, nil, logger.New("test"))

	productID := uuid.New()
	mockCache.On("GetProduct", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Pretzel", TotalStock: 8, Version: 2}, nil)
	mockRepo.On("StockState", mock.Anything, productID).
		Return(&domain.StockState{Version: 2, SoldQuantity: 3}, nil)

	product, err := service.GetByID(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, 3, product.SoldQuantity)
	assert.Equal(t, 5, product.RemainingStock)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetByID_StaleCacheFallsBack(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	service := NewService(mockRepo, mockCache, nil, logger.New("test"))

	productID := uuid.New()
	mockCache.On("GetProduct", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Pretzel", TotalStock: 5, Version: 1}, nil)
	mockRepo.On("StockState", mock.Anything, productID).
		Return(&domain.StockState{Version: 2, SoldQuantity: 8}, nil)
	mockCache.On("InvalidateProduct", mock.Anything, productID).Return(nil)
	mockRepo.On("GetByID", mock.Anything, productID, false).
		Return(&domain.Product{ID: productID, Name: "Pretzel", TotalStock: 10, SoldQuantity: 8, Version: 2}, nil)
	mockCache.On("SetProduct", mock.Anything, mock.Anything).Return(nil)

	product, err := service.GetByID(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, 2, product.RemainingStock)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestService_List_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	expectedProducts := []*domain.Product{
		{ID: uuid.New(), Name: "Bagel", TotalStock: 3, SoldQuantity: 1},
		{ID: uuid.New(), Name: "Croissant", TotalStock: 9},
	}

	mockRepo.On("List", mock.Anything, 20, 20).Return(expectedProducts, nil)
	mockRepo.On("Count", mock.Anything).Return(22, nil)

	products, total, err := service.List(context.Background(), domain.Page{Number: 2, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 22, total)
	assert.Equal(t, 2, products[0].RemainingStock)
	assert.Equal(t, 9, products[1].RemainingStock)
	mockRepo.AssertExpectations(t)
}

func TestService_GetByID_CachedRowOfDeletedProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	service := NewService(mockRepo, mockCache, nil, logger.New("test"))

	productID := uuid.New()
	mockCache.On("GetProduct", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Pretzel", TotalStock: 5, Version: 1}, nil)
	mockRepo.On("StockState", mock.Anything, productID).Return(nil, domain.ErrNotFound)
	mockCache.On("InvalidateProduct", mock.Anything, productID).Return(nil)
	mockRepo.On("GetByID", mock.Anything, productID, false).Return(nil, domain.ErrNotFound)

	product, err := service.GetByID(context.Background(), productID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, product)
	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "SetProduct", mock.Anything, mock.Anything)
}

func TestService_GetByID_DeleteBetweenReadAndCacheFill(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := &interleavingRepository{ProductRepository: store.Products()}
	cache := newMapCache()
	service := NewService(repo, cache, nil, logger.New("test"))

	p := &domain.Product{Name: "Brioche", Price: price("3.10"), TotalStock: 4}
	require.NoError(t, service.Create(ctx, p))
	require.NoError(t, cache.InvalidateProduct(ctx, p.ID))

	// The delete commits after the row was read but before it is cached
	repo.afterRead = func() {
		require.NoError(t, service.Delete(ctx, p.ID))
	}
	_, err := service.GetByID(ctx, p.ID)
	require.NoError(t, err)

	got, err := service.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, got)
	assert.False(t, cache.has(p.ID))
}

func TestService_GetByID_UpdateBetweenReadAndCacheFill(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := &interleavingRepository{ProductRepository: store.Products()}
	cache := newMapCache()
	service := NewService(repo, cache, nil, logger.New("test"))

	p := &domain.Product{Name: "Brioche", Price: price("3.10"), TotalStock: 4}
	require.NoError(t, service.Create(ctx, p))
	require.NoError(t, cache.InvalidateProduct(ctx, p.ID))

	newPrice := price("3.60")
	repo.afterRead = func() {
		_, err := service.Update(ctx, p.ID, domain.ProductUpdate{Price: &newPrice})
		require.NoError(t, err)
	}
	_, err := service.GetByID(ctx, p.ID)
	require.NoError(t, err)

	got, err := service.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(newPrice))
	assert.Equal(t, 2, got.Version)
}

func TestService_List_PageFarPastEnd(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	mockRepo.On("List", mock.Anything, 100, math.MaxInt).Return([]*domain.Product{}, nil)
	mockRepo.On("Count", mock.Anything).Return(3, nil)

	products, total, err := service.List(context.Background(), domain.Page{Number: math.MaxInt64/100 + 2, Limit: 100})

	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 3, total)
	mockRepo.AssertExpectations(t)
}

func TestService_List_PageFarPastEndInMemory(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store.Products(), nil, nil, logger.New("test"))
	require.NoError(t, service.Create(context.Background(), &domain.Product{Name: "Scone", Price: price("1.80"), TotalStock: 2}))

	products, total, err := service.List(context.Background(), domain.Page{Number: math.MaxInt64/100 + 2, Limit: 100})

	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 1, total)
}

func TestService_List_InvalidPage(t *testing.T) {
	service := newTestService(new(MockProductRepository))

	for _, page := range []domain.Page{{Number: 0, Limit: 10}, {Number: 1, Limit: 0}, {Number: 1, Limit: 101}} {
		_, _, err := service.List(context.Background(), page)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestService_Update_EmptyUpdate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	_, err := service.Update(context.Background(), uuid.New(), domain.ProductUpdate{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_AppliesOnlySuppliedFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	productID := uuid.New()
	existing := &domain.Product{ID: productID, Name: "Rye", Price: price("4.00"), TotalStock: 10, SoldQuantity: 2, Version: 3}
	mockRepo.On("GetByID", mock.Anything, productID, false).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Rye" && p.Price.Equal(price("4.25")) && p.TotalStock == 10 && p.Version == 3
	})).Return(nil)

	newPrice := price("4.25")
	product, err := service.Update(context.Background(), productID, domain.ProductUpdate{Price: &newPrice})

	require.NoError(t, err)
	assert.Equal(t, 8, product.RemainingStock)
	mockRepo.AssertExpectations(t)
}

func TestService_Update_StockBelowSold(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	productID := uuid.New()
	mockRepo.On("GetByID", mock.Anything, productID, false).
		Return(&domain.Product{ID: productID, Name: "Rye", Price: price("4.00"), TotalStock: 5, SoldQuantity: 3}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	totalStock := 1
	_, err := service.Update(context.Background(), productID, domain.ProductUpdate{TotalStock: &totalStock})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_Update_InvalidResult(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	productID := uuid.New()
	mockRepo.On("GetByID", mock.Anything, productID, false).
		Return(&domain.Product{ID: productID, Name: "Rye", Price: price("4.00"), TotalStock: 5}, nil)

	empty := ""
	_, err := service.Update(context.Background(), productID, domain.ProductUpdate{Name: &empty})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_EmptyImagePathClears(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo)

	productID := uuid.New()
	path := "/img/rye.png"
	mockRepo.On("GetByID", mock.Anything, productID, false).
		Return(&domain.Product{ID: productID, Name: "Rye", Price: price("4.00"), TotalStock: 5, ImagePath: &path}, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ImagePath == nil
	})).Return(nil)

	empty := ""
	product, err := service.Update(context.Background(), productID, domain.ProductUpdate{ImagePath: &empty})

	require.NoError(t, err)
	assert.Nil(t, product.ImagePath)
	mockRepo.AssertExpectations(t)
}

func TestService_Delete_PublishesEvent(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	mockPublisher := new(MockEventPublisher)
	service := NewService(mockRepo, mockCache, mockPublisher, logger.New("test"))

	productID := uuid.New()
	mockRepo.On("Delete", mock.Anything, productID).Return(nil)
	mockCache.On("InvalidateProduct", mock.Anything, productID).Return(assert.AnError)
	published := make(chan struct{})
	mockPublisher.On("Publish", mock.Anything, domain.SubjectProducts, mock.Anything).
		Run(func(mock.Arguments) { close(published) }).
		Return(nil)

	// Cache failure should not prevent the delete from succeeding
	err := service.Delete(context.Background(), productID)

	assert.NoError(t, err)
	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("product.deleted event was not published")
	}
	mockRepo.AssertExpectations(t)
}
