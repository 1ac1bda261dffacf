package domain

// CartLineItem is one row in the cart: a distinct product+variant pairing with
// its quantity and the price snapshot captured at add time. Name and slug are
// snapshotted too, so the cart still renders if the product is later renamed
// or removed from the catalog.
type CartLineItem struct {
	ProductID     int64         `json:"product_id"`
	VariantKey    string        `json:"variant_key"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	PriceSnapshot PriceSnapshot `json:"price_snapshot"`
	Quantity      int           `json:"quantity"`
}

func (l CartLineItem) Copy() CartLineItem {
	l.PriceSnapshot = l.PriceSnapshot.Copy()
	return l
}

// CartState is the serializable root for the cart, persisted as a whole.
type CartState struct {
	Lines []CartLineItem `json:"lines"`
}
