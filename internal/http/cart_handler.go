package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rasayana/storefront/internal/cart"
	"github.com/rasayana/storefront/internal/catalog"
	"github.com/rasayana/storefront/internal/domain"
	"github.com/rasayana/storefront/internal/state"
)

// ProductGetter is the slice of the catalog the cart needs: product lookups
// at add time to build price snapshots server-side.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type CartHandler struct {
	registry *state.Registry
	products ProductGetter
	timeout  time.Duration
}

func NewCartHandler(registry *state.Registry, products ProductGetter, timeout time.Duration) *CartHandler {
	return &CartHandler{
		registry: registry,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID  int64  `json:"product_id"`
	VariantKey string `json:"variant_key"`
	Quantity   int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	VariantKey string `json:"variant_key"`
	Quantity   int    `json:"quantity"`
}

type CartResponseDTO struct {
	Lines      []domain.CartLineItem `json:"lines"`
	Subtotal   float64               `json:"subtotal"`
	LineCount  int                   `json:"line_count"`
	TotalItems int                   `json:"total_items"`
}

func cartResponse(m *state.Manager) CartResponseDTO {
	return CartResponseDTO{
		Lines:      m.CartLines(),
		Subtotal:   m.Subtotal(),
		LineCount:  m.LineCount(),
		TotalItems: m.TotalItems(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)
	respondJSON(w, http.StatusOK, cartResponse(mgr))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	// Price and display fields are snapshotted from the catalog here, not
	// taken from the client.
	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up product")
		return
	}

	price := domain.NewPriceSnapshot(product.Price, product.SalePrice, product.CurrencySymbol)

	mgr := h.registry.ForOwner(ctx, sessionID)
	if _, err := mgr.AddToCart(ctx, product.ID, req.VariantKey, product.Name, product.Slug, price, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(mgr))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	// Zero or negative quantity removes the line.
	mgr := h.registry.ForOwner(ctx, sessionID)
	if err := mgr.SetCartQuantity(ctx, productID, req.VariantKey, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(mgr))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
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
	mgr.RemoveFromCart(ctx, productID, r.URL.Query().Get("variant"))

	respondJSON(w, http.StatusOK, cartResponse(mgr))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)
	mgr.ClearCart(ctx)

	respondJSON(w, http.StatusOK, cartResponse(mgr))
}

// CompleteCheckout clears both stores and the persisted blob. Payment and
// order placement happen elsewhere; only the clearing contract lives here.
func (h *CartHandler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	mgr := h.registry.ForOwner(ctx, sessionID)
	mgr.Reset(ctx)

	respondJSON(w, http.StatusOK, cartResponse(mgr))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
