package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasayana/storefront/internal/catalog"
	"github.com/rasayana/storefront/internal/domain"
)

type catalogQueriesMock struct {
	catalogMock
	lastFilters catalog.Filters
	page        *catalog.ProductPage
}

func (c *catalogQueriesMock) ListProducts(_ context.Context, filters catalog.Filters) (*catalog.ProductPage, error) {
	c.lastFilters = filters
	return c.page, nil
}

func (c *catalogQueriesMock) ListCategories(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: 1, Name: "Honey"}}, nil
}

func (c *catalogQueriesMock) ListHealthBenefits(context.Context) ([]*domain.HealthBenefit, error) {
	return []*domain.HealthBenefit{{ID: 1, Name: "Immunity Booster"}}, nil
}

func setupCatalogRouter(t *testing.T) (*chi.Mux, *catalogQueriesMock) {
	queries := &catalogQueriesMock{
		catalogMock: testProducts(),
		page: &catalog.ProductPage{
			Products: []*domain.Product{{ID: 101, Name: "Ashwagandha Capsules"}},
			Total:    1,
			Pages:    1,
		},
	}
	handler := NewCatalogHandler(queries, 5*time.Second)

	r := chi.NewRouter()
	r.Get("/api/public/products", handler.ListProducts)
	r.Get("/api/public/product/{product_id}", handler.GetProduct)
	r.Get("/api/public/categories", handler.ListCategories)
	r.Get("/api/public/health-benefits", handler.ListHealthBenefits)
	return r, queries
}

func TestListProducts_ParsesQueryFilters(t *testing.T) {
	router, queries := setupCatalogRouter(t)

	rec := doJSON(t, router, "GET", "/api/public/products?page=2&per_page=10&sort_by=price&sort_order=asc&search=ashwa&category_id=1&health_benefit_id=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, queries.lastFilters.Page)
	assert.Equal(t, 10, queries.lastFilters.PerPage)
	assert.Equal(t, "price", queries.lastFilters.SortBy)
	assert.Equal(t, "asc", queries.lastFilters.SortOrder)
	assert.Equal(t, "ashwa", queries.lastFilters.Search)
	assert.Equal(t, int64(1), queries.lastFilters.CategoryID)
	assert.Equal(t, int64(3), queries.lastFilters.HealthBenefitID)

	var page catalog.ProductPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
}

func TestGetProduct_Success(t *testing.T) {
	router, _ := setupCatalogRouter(t)

	rec := doJSON(t, router, "GET", "/api/public/product/101", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
	assert.Equal(t, "Ashwagandha Capsules", product.Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	router, _ := setupCatalogRouter(t)

	rec := doJSON(t, router, "GET", "/api/public/product/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProduct_InvalidID(t *testing.T) {
	router, _ := setupCatalogRouter(t)

	rec := doJSON(t, router, "GET", "/api/public/product/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategories(t *testing.T) {
	router, _ := setupCatalogRouter(t)

	rec := doJSON(t, router, "GET", "/api/public/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]domain.Category
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["categories"], 1)
	assert.Equal(t, "Honey", resp["categories"][0].Name)
}

func TestListHealthBenefits(t *testing.T) {
	router, _ := setupCatalogRouter(t)

	rec := doJSON(t, router, "GET", "/api/public/health-benefits", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]domain.HealthBenefit
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["health_benefits"], 1)
}
