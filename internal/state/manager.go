package state

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/rasayana/storefront/internal/cart"
	"github.com/rasayana/storefront/internal/domain"
	"github.com/rasayana/storefront/internal/persistence"
	"github.com/rasayana/storefront/internal/wishlist"
)

// Manager is the single entry point the rest of the application talks to. It
// owns one shopper's cart and wishlist plus the persistence handle, loads
// state at startup and re-persists after every mutation (write-through).
//
// Persistence failures are logged and never roll back the in-memory mutation:
// the shopper's action keeps working for the rest of the session even when it
// cannot be durably saved. Validation errors, by contrast, are returned to
// the caller before any state changes.
type Manager struct {
	mu       sync.Mutex
	ownerID  string
	cart     *cart.Store
	wishlist *wishlist.Store
	adapter  persistence.Adapter
}

func NewManager(ownerID string, adapter persistence.Adapter) *Manager {
	return &Manager{
		ownerID:  ownerID,
		cart:     cart.NewStore(),
		wishlist: wishlist.NewStore(),
		adapter:  adapter,
	}
}

// Load reconstructs both stores from storage. A missing key, corrupt blob or
// unknown schema version initializes empty stores instead of failing: stale
// client state must never block the application from starting.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.adapter.Read(ctx, m.ownerID)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			log.Printf("state load failed for %s, starting empty: %v", m.ownerID, err)
		}
		m.cart.Clear()
		m.wishlist.Clear()
		return
	}

	if state.Version != domain.StateVersion {
		log.Printf("state version %d for %s does not match %d, discarding", state.Version, m.ownerID, domain.StateVersion)
		m.cart.Clear()
		m.wishlist.Clear()
		return
	}

	m.cart.Restore(state.Cart.Lines)
	m.wishlist.Restore(state.Wishlist.Entries)
}

func (m *Manager) AddToCart(ctx context.Context, productID int64, variantKey, name, slug string, price domain.PriceSnapshot, quantity int) (domain.CartLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	line, err := m.cart.Add(productID, variantKey, name, slug, price, quantity)
	if err != nil {
		return domain.CartLineItem{}, err
	}
	m.persist(ctx)
	return line, nil
}

func (m *Manager) SetCartQuantity(ctx context.Context, productID int64, variantKey string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cart.SetQuantity(productID, variantKey, quantity); err != nil {
		return err
	}
	m.persist(ctx)
	return nil
}

func (m *Manager) RemoveFromCart(ctx context.Context, productID int64, variantKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart.Remove(productID, variantKey)
	m.persist(ctx)
}

func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart.Clear()
	m.persist(ctx)
}

func (m *Manager) CartLines() []domain.CartLineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Lines()
}

func (m *Manager) Subtotal() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Subtotal()
}

func (m *Manager) LineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.LineCount()
}

func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.TotalItems()
}

// ToggleWishlist reports whether the product is favorited after the call.
func (m *Manager) ToggleWishlist(ctx context.Context, entry domain.WishlistEntry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inWishlist := m.wishlist.Toggle(entry)
	m.persist(ctx)
	return inWishlist
}

func (m *Manager) WishlistContains(productID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wishlist.Contains(productID)
}

func (m *Manager) RemoveFromWishlist(ctx context.Context, productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wishlist.Remove(productID)
	m.persist(ctx)
}

func (m *Manager) ClearWishlist(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wishlist.Clear()
	m.persist(ctx)
}

func (m *Manager) WishlistEntries() []domain.WishlistEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wishlist.Entries()
}

func (m *Manager) WishlistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wishlist.Count()
}

// Reset empties both stores and deletes the persisted blob. Used after a
// completed checkout.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart.Clear()
	m.wishlist.Clear()
	if err := m.adapter.Delete(ctx, m.ownerID); err != nil {
		log.Printf("state delete failed for %s: %v", m.ownerID, err)
	}
}

// persist is called with the mutex held, so writes reach the adapter in the
// order mutations occurred.
func (m *Manager) persist(ctx context.Context) {
	state := &domain.PersistedState{
		Version:  domain.StateVersion,
		Cart:     domain.CartState{Lines: m.cart.Lines()},
		Wishlist: domain.WishlistState{Entries: m.wishlist.Entries()},
	}
	if err := m.adapter.Write(ctx, m.ownerID, state); err != nil {
		log.Printf("state persist failed for %s: %v", m.ownerID, err)
	}
}
