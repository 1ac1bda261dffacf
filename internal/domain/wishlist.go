package domain

// WishlistEntry is a favorited product reference plus the display fields
// captured at favorite time. The snapshot fields are for rendering only and
// are not authoritative.
type WishlistEntry struct {
	ProductID     int64         `json:"product_id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	ImageURL      string        `json:"image_url"`
	PriceSnapshot PriceSnapshot `json:"price_snapshot"`
}

func (e WishlistEntry) Copy() WishlistEntry {
	e.PriceSnapshot = e.PriceSnapshot.Copy()
	return e
}

// WishlistState is the serializable root for the wishlist.
type WishlistState struct {
	Entries []WishlistEntry `json:"entries"`
}
