package wishlist

import (
	"github.com/rasayana/storefront/internal/domain"
)

// Store owns the deduplicated favorite set. Toggle is the only mutation the
// heart icon needs; every call site in the UI is a toggle button, so there is
// deliberately no separate add path. Not safe for concurrent use; the state
// manager serializes access.
type Store struct {
	entries []domain.WishlistEntry
	index   map[int64]int
}

func NewStore() *Store {
	return &Store{
		index: make(map[int64]int),
	}
}

// Restore replaces the store contents with previously persisted entries,
// keeping order and dropping duplicate product ids.
func (s *Store) Restore(entries []domain.WishlistEntry) {
	s.entries = s.entries[:0]
	s.index = make(map[int64]int, len(entries))
	for _, e := range entries {
		if _, ok := s.index[e.ProductID]; ok {
			continue
		}
		s.index[e.ProductID] = len(s.entries)
		s.entries = append(s.entries, e.Copy())
	}
}

// Toggle removes the product if favorited, or inserts the supplied display
// snapshot if not. The returned bool reports whether the product is in the
// wishlist after the call.
func (s *Store) Toggle(entry domain.WishlistEntry) bool {
	if i, ok := s.index[entry.ProductID]; ok {
		s.removeAt(entry.ProductID, i)
		return false
	}
	s.index[entry.ProductID] = len(s.entries)
	s.entries = append(s.entries, entry.Copy())
	return true
}

func (s *Store) Contains(productID int64) bool {
	_, ok := s.index[productID]
	return ok
}

// Remove deletes the entry if present; removing an absent entry is a no-op.
func (s *Store) Remove(productID int64) {
	if i, ok := s.index[productID]; ok {
		s.removeAt(productID, i)
	}
}

func (s *Store) Clear() {
	s.entries = s.entries[:0]
	s.index = make(map[int64]int)
}

// Entries returns a snapshot of all entries in insertion order, sharing no
// memory with the store.
func (s *Store) Entries() []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Copy()
	}
	return out
}

func (s *Store) Count() int {
	return len(s.entries)
}

func (s *Store) removeAt(productID int64, i int) {
	delete(s.index, productID)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].ProductID] = j
	}
}
