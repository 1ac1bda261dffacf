package domain

// StateVersion tags the persisted blob format. A blob with any other version
// is discarded on load and the stores start empty.
const StateVersion = 1

// PersistedState is the single blob written per owner. Keeping cart and
// wishlist in one document means both are restored atomically together.
type PersistedState struct {
	Version  int           `json:"version"`
	Cart     CartState     `json:"cart"`
	Wishlist WishlistState `json:"wishlist"`
}
