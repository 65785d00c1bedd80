package domain

import "context"

type AssetRepository interface {
	// NextId increments and persists the issuance counter and returns the id
	// to assign. Ids are strictly increasing, starting at 1.
	NextId(ctx context.Context) (uint64, error)
	Add(ctx context.Context, asset Asset) error
	Update(ctx context.Context, asset Asset) error
	// Get returns nil without error when no record exists.
	Get(ctx context.Context, assetId uint64) (*Asset, error)
	GetAll(ctx context.Context) ([]Asset, error)
	GetStaked(ctx context.Context) ([]Asset, error)
	Close()
}
