package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rasayana/storefront/internal/catalog"
	"github.com/rasayana/storefront/internal/domain"
	"github.com/rasayana/storefront/internal/state"
)

type WishlistHandler struct {
	registry *state.Registry
	products ProductGetter
	timeout  time.Duration
}

func NewWishlistHandler(registry *state.Registry, products ProductGetter, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		registry: registry,
		products: products,
		timeout:  timeout,
	}
}

type ToggleRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type ToggleResponseDTO struct {
	InWishlist bool `json:"in_wishlist"`
	Count      int  `json:"count"`
}

type WishlistResponseDTO struct {
	Entries []domain.WishlistEntry `json:"entries"`
	Count   int                    `json:"count"`
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)
	respondJSON(w, http.StatusOK, WishlistResponseDTO{
		Entries: mgr.WishlistEntries(),
		Count:   mgr.WishlistCount(),
	})
}

// Toggle inserts the product when absent and removes it when present. The
// heart icon is the only mutation surface the UI has, so there is no
// separate add endpoint.
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req ToggleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)

	// Only look the product up when inserting; a removal toggle must work
	// even after the product has left the catalog.
	if !mgr.WishlistContains(req.ProductID) {
		product, err := h.products.GetProduct(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "not_found", "product not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up product")
			return
		}

		entry := domain.WishlistEntry{
			ProductID:     product.ID,
			Name:          product.Name,
			Slug:          product.Slug,
			ImageURL:      product.ImageURL,
			PriceSnapshot: domain.NewPriceSnapshot(product.Price, product.SalePrice, product.CurrencySymbol),
		}
		inWishlist := mgr.ToggleWishlist(ctx, entry)
		respondJSON(w, http.StatusOK, ToggleResponseDTO{InWishlist: inWishlist, Count: mgr.WishlistCount()})
		return
	}

	inWishlist := mgr.ToggleWishlist(ctx, domain.WishlistEntry{ProductID: req.ProductID})
	respondJSON(w, http.StatusOK, ToggleResponseDTO{InWishlist: inWishlist, Count: mgr.WishlistCount()})
}

func (h *WishlistHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)
	mgr.RemoveFromWishlist(ctx, productID)

	respondJSON(w, http.StatusOK, WishlistResponseDTO{
		Entries: mgr.WishlistEntries(),
		Count:   mgr.WishlistCount(),
	})
}

func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)
	mgr.ClearWishlist(ctx)

	respondJSON(w, http.StatusOK, WishlistResponseDTO{
		Entries: mgr.WishlistEntries(),
		Count:   mgr.WishlistCount(),
	})
}
