package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasayana/storefront/internal/catalog"
	"github.com/rasayana/storefront/internal/domain"
	"github.com/rasayana/storefront/internal/persistence"
	"github.com/rasayana/storefront/internal/state"
)

type catalogMock struct {
	products map[int64]*domain.Product
	err      error
}

func (c catalogMock) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func testProducts() catalogMock {
	sale := 839.0
	return catalogMock{products: map[int64]*domain.Product{
		101: {ID: 101, Name: "Ashwagandha Capsules", Slug: "ashwagandha", Price: 1199, SalePrice: &sale, CurrencySymbol: "₹"},
		202: {ID: 202, Name: "Wild Forest Honey", Slug: "wild-forest-honey", Price: 649, CurrencySymbol: "₹"},
	}}
}

// sessionStub plays the role of SessionMiddleware with a fixed session id.
func sessionStub(sessionID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), "session_id", sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setupCartRouter(t *testing.T) (*chi.Mux, *state.Registry) {
	adapter, err := persistence.NewFileAdapter(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	registry := state.NewRegistry(adapter)
	handler := NewCartHandler(registry, testProducts(), 5*time.Second)

	r := chi.NewRouter()
	r.Use(sessionStub("guest-1"))
	r.Get("/api/cart", handler.GetCart)
	r.Post("/api/cart/items", handler.AddItem)
	r.Put("/api/cart/items/{product_id}", handler.UpdateQuantity)
	r.Delete("/api/cart/items/{product_id}", handler.RemoveItem)
	r.Delete("/api/cart", handler.ClearCart)
	r.Post("/api/checkout/complete", handler.CompleteCheckout)
	return r, registry
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponseDTO {
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestAddItem_Success(t *testing.T) {
	router, _ := setupCartRouter(t)

	rec := doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, VariantKey: "1-bottle", Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(101), resp.Lines[0].ProductID)
	assert.Equal(t, "Ashwagandha Capsules", resp.Lines[0].Name)
	assert.Equal(t, 839.0, resp.Subtotal)
	assert.Equal(t, 1, resp.TotalItems)
}

func TestAddItem_SameProductTwice_MergesLine(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, VariantKey: "1-bottle", Quantity: 1})
	rec := doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, VariantKey: "1-bottle", Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.Equal(t, 1678.0, resp.Subtotal)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	router, _ := setupCartRouter(t)

	rec := doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_quantity", resp.Code)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	router, _ := setupCartRouter(t)

	rec := doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 999, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_MissingSession_Unauthorized(t *testing.T) {
	handler := NewCartHandler(state.NewRegistry(newTestFileAdapter(t)), testProducts(), 5*time.Second)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(AddItemRequestDTO{ProductID: 101, Quantity: 1}))
	req := httptest.NewRequest("POST", "/api/cart/items", &buf)
	rec := httptest.NewRecorder()

	handler.AddItem(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateQuantity_Success(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, VariantKey: "1-bottle", Quantity: 1})
	rec := doJSON(t, router, "PUT", "/api/cart/items/101", UpdateQuantityRequestDTO{VariantKey: "1-bottle", Quantity: 4})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.Equal(t, 4, resp.TotalItems)
}

func TestUpdateQuantity_Zero_RemovesLine(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, VariantKey: "1-bottle", Quantity: 2})
	rec := doJSON(t, router, "PUT", "/api/cart/items/101", UpdateQuantityRequestDTO{VariantKey: "1-bottle", Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, 0.0, resp.Subtotal)
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	router, _ := setupCartRouter(t)

	rec := doJSON(t, router, "PUT", "/api/cart/items/101", UpdateQuantityRequestDTO{Quantity: 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveItem_ThenGetCart(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, VariantKey: "1-bottle", Quantity: 1})
	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 202, Quantity: 3})

	rec := doJSON(t, router, "DELETE", "/api/cart/items/101?variant=1-bottle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/cart", nil)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(202), resp.Lines[0].ProductID)
}

func TestClearCart(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, Quantity: 1})
	rec := doJSON(t, router, "DELETE", "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Lines)
}

func TestCompleteCheckout_ResetsState(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, "POST", "/api/cart/items", AddItemRequestDTO{ProductID: 101, Quantity: 2})
	rec := doJSON(t, router, "POST", "/api/checkout/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/cart", nil)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, 0, resp.TotalItems)
}

func newTestFileAdapter(t *testing.T) *persistence.FileAdapter {
	adapter, err := persistence.NewFileAdapter(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	return adapter
}
