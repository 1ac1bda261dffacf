package domain

// PriceSnapshot captures the price figures a shopper saw at the moment of a
// cart or wishlist action. It is display-only data with no settlement behind
// it, so invalid inputs are clamped to zero instead of rejected.
type PriceSnapshot struct {
	BasePrice      float64  `json:"base_price"`
	SalePrice      *float64 `json:"sale_price"`
	CurrencySymbol string   `json:"currency_symbol"`
}

func NewPriceSnapshot(basePrice float64, salePrice *float64, currencySymbol string) PriceSnapshot {
	if basePrice < 0 {
		basePrice = 0
	}
	if salePrice != nil && *salePrice < 0 {
		zero := 0.0
		salePrice = &zero
	}
	return PriceSnapshot{
		BasePrice:      basePrice,
		SalePrice:      clonePrice(salePrice),
		CurrencySymbol: currencySymbol,
	}
}

// Effective returns the price used for totals: the sale price when present,
// the base price otherwise.
func (p PriceSnapshot) Effective() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.BasePrice
}

func (p PriceSnapshot) Equal(other PriceSnapshot) bool {
	if p.BasePrice != other.BasePrice || p.CurrencySymbol != other.CurrencySymbol {
		return false
	}
	if (p.SalePrice == nil) != (other.SalePrice == nil) {
		return false
	}
	if p.SalePrice != nil && *p.SalePrice != *other.SalePrice {
		return false
	}
	return true
}

// Copy returns a snapshot that shares no pointers with the receiver, so
// callers holding the copy cannot mutate store-owned state.
func (p PriceSnapshot) Copy() PriceSnapshot {
	p.SalePrice = clonePrice(p.SalePrice)
	return p
}

func clonePrice(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
