package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rasayana/storefront/internal/catalog"
	"github.com/rasayana/storefront/internal/domain"
)

// CatalogQueries is the full read-only catalog surface the public endpoints
// serve from.
type CatalogQueries interface {
	ProductGetter
	ListProducts(ctx context.Context, filters catalog.Filters) (*catalog.ProductPage, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListHealthBenefits(ctx context.Context) ([]*domain.HealthBenefit, error)
}

type CatalogHandler struct {
	catalog CatalogQueries
	timeout time.Duration
}

func NewCatalogHandler(c CatalogQueries, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
		timeout: timeout,
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filters := catalog.Filters{
		Page:            intParam(q.Get("page")),
		PerPage:         intParam(q.Get("per_page")),
		SortBy:          q.Get("sort_by"),
		SortOrder:       q.Get("sort_order"),
		Search:          q.Get("search"),
		CategoryID:      int64Param(q.Get("category_id")),
		HealthBenefitID: int64Param(q.Get("health_benefit_id")),
	}

	page, err := h.catalog.ListProducts(ctx, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list categories")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *CatalogHandler) ListHealthBenefits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	benefits, err := h.catalog.ListHealthBenefits(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list health benefits")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"health_benefits": benefits})
}

func intParam(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func int64Param(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
