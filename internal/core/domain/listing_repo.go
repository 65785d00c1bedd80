package domain

import "context"

type ListingRepository interface {
	Add(ctx context.Context, listing Listing) error
	Update(ctx context.Context, listing Listing) error
	// Get returns nil without error when no record exists, active or not.
	Get(ctx context.Context, assetId uint64) (*Listing, error)
	GetActive(ctx context.Context) ([]Listing, error)
	Close()
}
