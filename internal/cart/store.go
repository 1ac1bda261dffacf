package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rasayana/storefront/internal/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidProduct  = errors.New("product id must be positive")
	ErrLineNotFound    = errors.New("line not found in cart")
)

// DefaultVariant is used when a product is sold without pack-size variants.
const DefaultVariant = "default"

type lineKey struct {
	productID  int64
	variantKey string
}

// Store owns the ordered (productID, variantKey) -> line mapping. It is not
// safe for concurrent use; the state manager serializes access to it.
type Store struct {
	lines []domain.CartLineItem
	index map[lineKey]int
}

func NewStore() *Store {
	return &Store{
		index: make(map[lineKey]int),
	}
}

// Restore replaces the store contents with previously persisted lines.
// Insertion order of the slice is preserved; a duplicate (product, variant)
// pair in the input collapses onto the first occurrence.
func (s *Store) Restore(lines []domain.CartLineItem) {
	s.lines = s.lines[:0]
	s.index = make(map[lineKey]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		key := keyFor(line.ProductID, line.VariantKey)
		line.VariantKey = key.variantKey
		if i, ok := s.index[key]; ok {
			s.lines[i].Quantity += line.Quantity
			continue
		}
		s.index[key] = len(s.lines)
		s.lines = append(s.lines, line.Copy())
	}
}

// Add merges the quantity into an existing line for the same (product,
// variant) pair or inserts a new line at the end. On a merge the price
// snapshot is replaced with the supplied one, so the cart always reflects the
// freshest price the shopper saw. Returns the resulting line.
func (s *Store) Add(productID int64, variantKey, name, slug string, price domain.PriceSnapshot, quantity int) (domain.CartLineItem, error) {
	if productID <= 0 {
		return domain.CartLineItem{}, ErrInvalidProduct
	}
	if quantity < 1 {
		return domain.CartLineItem{}, ErrInvalidQuantity
	}

	key := keyFor(productID, variantKey)
	if i, ok := s.index[key]; ok {
		s.lines[i].Quantity += quantity
		s.lines[i].PriceSnapshot = price.Copy()
		return s.lines[i].Copy(), nil
	}

	line := domain.CartLineItem{
		ProductID:     productID,
		VariantKey:    key.variantKey,
		Name:          name,
		Slug:          slug,
		PriceSnapshot: price.Copy(),
		Quantity:      quantity,
	}
	s.index[key] = len(s.lines)
	s.lines = append(s.lines, line)
	return line.Copy(), nil
}

// SetQuantity sets the quantity of an existing line directly. A quantity of
// zero or less removes the line.
func (s *Store) SetQuantity(productID int64, variantKey string, quantity int) error {
	key := keyFor(productID, variantKey)
	i, ok := s.index[key]
	if !ok {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		s.removeAt(key, i)
		return nil
	}
	s.lines[i].Quantity = quantity
	return nil
}

// Remove deletes the line if present; removing an absent line is a no-op.
func (s *Store) Remove(productID int64, variantKey string) {
	key := keyFor(productID, variantKey)
	if i, ok := s.index[key]; ok {
		s.removeAt(key, i)
	}
}

func (s *Store) Clear() {
	s.lines = s.lines[:0]
	s.index = make(map[lineKey]int)
}

// Lines returns a snapshot of all lines in insertion order. The snapshot
// shares no memory with the store.
func (s *Store) Lines() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(s.lines))
	for i, line := range s.lines {
		out[i] = line.Copy()
	}
	return out
}

// Subtotal sums effective price * quantity over all lines, rounded to two
// decimal places with standard half-up rounding.
func (s *Store) Subtotal() float64 {
	total := decimal.Zero
	for _, line := range s.lines {
		price := decimal.NewFromFloat(line.PriceSnapshot.Effective())
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// LineCount returns the number of distinct lines.
func (s *Store) LineCount() int {
	return len(s.lines)
}

// TotalItems returns the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	n := 0
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

func (s *Store) removeAt(key lineKey, i int) {
	delete(s.index, key)
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	for j := i; j < len(s.lines); j++ {
		s.index[keyFor(s.lines[j].ProductID, s.lines[j].VariantKey)] = j
	}
}

func keyFor(productID int64, variantKey string) lineKey {
	if variantKey == "" {
		variantKey = DefaultVariant
	}
	return lineKey{productID: productID, variantKey: variantKey}
}
