package domain

import "context"

type RewardRepository interface {
	// Get returns nil without error when the asset was never staked.
	Get(ctx context.Context, assetId uint64) (*RewardAccount, error)
	Upsert(ctx context.Context, account RewardAccount) error
	Close()
}
