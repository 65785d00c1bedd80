package ports

import (
	"context"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

// TxManager runs fn inside a single storage transaction. Repository calls
// made with the context it passes share that transaction; either every write
// commits or none does.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type RepoManager interface {
	TxManager
	Events() domain.EventRepository
	Assets() domain.AssetRepository
	Listings() domain.ListingRepository
	Rewards() domain.RewardRepository
	Params() domain.ParamsRepository
	Balances() domain.BalanceRepository
	Owners() domain.OwnershipRepository
	Heights() HeightSource
	Close()
}
