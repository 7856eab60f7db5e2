package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/repository/memory"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/product"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/sale"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/stats"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, prod *domain.Product) error {
	args := m.Called(ctx, prod)
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

func (m *MockProductRepository) Update(ctx context.Context, prod *domain.Product) error {
	args := m.Called(ctx, prod)
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

// testServer wires the handlers against an in-memory store
func testServer(t *testing.T) http.Handler {
	t.Helper()
	log := logger.New("test")
	store := memory.NewStore()

	productHandler := NewProductHandler(product.NewService(store.Products(), nil, nil, log), log)
	saleHandler := NewSaleHandler(sale.NewService(store.Sales(), store.Products(), nil, log), log)
	statsHandler := NewStatsHandler(stats.NewService(store.Stats(), store.Products(), log), log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products", productHandler.Create)
		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.GetByID)
		r.Patch("/products/{id}", productHandler.Update)
		r.Delete("/products/{id}", productHandler.Delete)
		r.Post("/sales", saleHandler.Create)
		r.Get("/sales", saleHandler.List)
		r.Get("/stats/summary", statsHandler.Summary)
		r.Get("/stats/best-sellers", statsHandler.BestSellers)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	} `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createProduct(t *testing.T, h http.Handler, body string) domain.Product {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p domain.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &p))
	return p
}

func TestProductHandler_Create_Success(t *testing.T) {
	h := testServer(t)

	p := createProduct(t, h, `{"name":"Croissant","price":"2.50","total_stock":10}`)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Croissant", p.Name)
	assert.Equal(t, "2.5", p.Price.String())
	assert.Equal(t, 10, p.TotalStock)
	assert.Equal(t, 0, p.SoldQuantity)
	assert.Equal(t, 10, p.RemainingStock)
}

func TestProductHandler_Create_Invalid(t *testing.T) {
	h := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `invalid json`},
		{"missing price", `{"name":"Croissant","total_stock":10}`},
		{"missing stock", `{"name":"Croissant","price":"2.50"}`},
		{"empty name", `{"name":"","price":"2.50","total_stock":10}`},
		{"negative price", `{"name":"Croissant","price":"-1","total_stock":10}`},
		{"negative stock", `{"name":"Croissant","price":"1","total_stock":-1}`},
		{"too many decimals", `{"name":"Croissant","price":"1.005","total_stock":1}`},
		{"price out of range", `{"name":"Croissant","price":"10000000000","total_stock":1}`},
		{"stock out of range", `{"name":"Croissant","price":"1","total_stock":3000000000}`},
		{"unknown field", `{"name":"Croissant","price":"1","total_stock":1,"description":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Baguette","price":"3.00","total_stock":20}`)

	w := do(t, h, http.MethodGet, "/api/v1/products/"+p.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/products/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/products/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w).Error)
}

func TestProductHandler_DeletedLookup(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Eclair","price":"4.00","total_stock":5}`)

	w := do(t, h, http.MethodDelete, "/api/v1/products/"+p.ID.String(), "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/products/"+p.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/products/"+p.ID.String()+"?include_deleted=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.NotNil(t, got.DeletedAt)

	w = do(t, h, http.MethodDelete, "/api/v1/products/"+p.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_List(t *testing.T) {
	h := testServer(t)
	for _, name := range []string{"Scone", "Bagel", "Muffin"} {
		createProduct(t, h, `{"name":"`+name+`","price":"1.00","total_stock":3}`)
	}

	w := do(t, h, http.MethodGet, "/api/v1/products?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)

	var products []domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 2)
	assert.Equal(t, "Bagel", products[0].Name)
	assert.Equal(t, "Muffin", products[1].Name)
	assert.Equal(t, 3, env.Pagination.Total)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 2, env.Pagination.Limit)

	w = do(t, h, http.MethodGet, "/api/v1/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, decode(t, w).Pagination.Limit)

	w = do(t, h, http.MethodGet, "/api/v1/products?page=92233720368547760&limit=100", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &products))
	assert.Empty(t, products)

	for _, q := range []string{"?page=0", "?limit=0", "?limit=101", "?page=x"} {
		w = do(t, h, http.MethodGet, "/api/v1/products"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestProductHandler_Update(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Tart","price":"5.00","total_stock":4}`)
	path := "/api/v1/products/" + p.ID.String()

	w := do(t, h, http.MethodPost, "/api/v1/sales", `{"product_id":"`+p.ID.String()+`","quantity":3}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPatch, path, `{"price":"5.50"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &updated))
	assert.Equal(t, "Tart", updated.Name)
	assert.Equal(t, "5.5", updated.Price.String())
	assert.Equal(t, 1, updated.RemainingStock)

	w = do(t, h, http.MethodPatch, path, `{"total_stock":2}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPatch, "/api/v1/products/"+uuid.New().String(), `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_Update_ImagePath(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Tart","price":"5.00","total_stock":4,"image_path":"/img/tart.png"}`)
	path := "/api/v1/products/" + p.ID.String()

	var updated domain.Product
	w := do(t, h, http.MethodPatch, path, `{"name":"Fruit Tart","image_path":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &updated))
	require.NotNil(t, updated.ImagePath)
	assert.Equal(t, "/img/tart.png", *updated.ImagePath)

	updated = domain.Product{}
	w = do(t, h, http.MethodPatch, path, `{"image_path":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &updated))
	assert.Nil(t, updated.ImagePath)
	assert.Equal(t, "Fruit Tart", updated.Name)
}

func TestProductHandler_StorageUnavailable(t *testing.T) {
	log := logger.New("test")
	mockRepo := new(MockProductRepository)
	mockRepo.On("GetByID", mock.Anything, mock.Anything, false).Return(nil, domain.ErrStorageUnavailable)
	productHandler := NewProductHandler(product.NewService(mockRepo, nil, nil, log), log)

	r := chi.NewRouter()
	r.Get("/products/{id}", productHandler.GetByID)

	w := do(t, r, http.MethodGet, "/products/"+uuid.New().String(), "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_CreateRequestBodyLimit(t *testing.T) {
	h := testServer(t)
	body := `{"name":"` + strings.Repeat("a", 2<<20) + `","price":"1","total_stock":1}`

	w := do(t, h, http.MethodPost, "/api/v1/products", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
