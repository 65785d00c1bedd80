package domain

// Listing is a standing offer to sell an asset at a fixed price. Purchase
// deactivates the record in place (price zeroed, seller kept); the record is
// never deleted.
type Listing struct {
	AssetId uint64
	Price   uint64
	Seller  string
	Active  bool
}
