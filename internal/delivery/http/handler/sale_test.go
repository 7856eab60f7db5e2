package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

func recordSale(h http.Handler, t *testing.T, productID uuid.UUID, qty int) int {
	t.Helper()
	body := fmt.Sprintf(`{"product_id":"%s","quantity":%d}`, productID, qty)
	return do(t, h, http.MethodPost, "/api/v1/sales", body).Code
}

func TestSaleHandler_Create(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Croissant","price":"2.50","total_stock":5}`)

	w := do(t, h, http.MethodPost, "/api/v1/sales", fmt.Sprintf(`{"product_id":"%s","quantity":2}`, p.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	var s domain.Sale
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &s))
	assert.Equal(t, p.ID, s.ProductID)
	assert.Equal(t, "Croissant", s.ProductName)
	assert.Equal(t, 2, s.Quantity)
	assert.Equal(t, "5", s.TotalAmount.String())

	assert.Equal(t, http.StatusCreated, recordSale(h, t, p.ID, 2))

	w = do(t, h, http.MethodPost, "/api/v1/sales", fmt.Sprintf(`{"product_id":"%s","quantity":2}`, p.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Insufficient stock", decode(t, w).Error)

	w = do(t, h, http.MethodGet, "/api/v1/products/"+p.ID.String(), "")
	var got domain.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, 4, got.SoldQuantity)
	assert.Equal(t, 1, got.RemainingStock)
}

func TestSaleHandler_Create_Errors(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Croissant","price":"2.50","total_stock":5}`)

	assert.Equal(t, http.StatusBadRequest, recordSale(h, t, p.ID, 0))
	assert.Equal(t, http.StatusBadRequest, recordSale(h, t, p.ID, -1))
	assert.Equal(t, http.StatusNotFound, recordSale(h, t, uuid.New(), 1))

	w := do(t, h, http.MethodPost, "/api/v1/sales", `{"product_id":"nope","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleHandler_Create_Concurrent(t *testing.T) {
	h := testServer(t)
	p := createProduct(t, h, `{"name":"Brioche","price":"1.00","total_stock":7}`)

	var wg sync.WaitGroup
	codes := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- recordSale(h, t, p.ID, 1)
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for c := range codes {
		counts[c]++
	}
	assert.Equal(t, 7, counts[http.StatusCreated])
	assert.Equal(t, 13, counts[http.StatusConflict])
}

func TestSaleHandler_List(t *testing.T) {
	h := testServer(t)
	a := createProduct(t, h, `{"name":"A","price":"1.00","total_stock":10}`)
	b := createProduct(t, h, `{"name":"B","price":"1.00","total_stock":10}`)
	require.Equal(t, http.StatusCreated, recordSale(h, t, a.ID, 1))
	require.Equal(t, http.StatusCreated, recordSale(h, t, b.ID, 2))
	require.Equal(t, http.StatusCreated, recordSale(h, t, a.ID, 3))

	w := do(t, h, http.MethodGet, "/api/v1/sales?product_id="+a.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	var sales []domain.Sale
	require.NoError(t, json.Unmarshal(env.Data, &sales))
	assert.Equal(t, 2, env.Pagination.Total)
	for _, s := range sales {
		assert.Equal(t, a.ID, s.ProductID)
	}

	future := url.QueryEscape(time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
	w = do(t, h, http.MethodGet, "/api/v1/sales?from="+future, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode(t, w).Pagination.Total)
}

func TestSaleHandler_List_InvalidQuery(t *testing.T) {
	h := testServer(t)

	for _, q := range []string{
		"?product_id=abc",
		"?from=yesterday",
		"?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z",
		"?limit=500",
	} {
		w := do(t, h, http.MethodGet, "/api/v1/sales"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
