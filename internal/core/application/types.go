package application

import (
	"context"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

// Service exposes the collateral-backed ledger operations: issuance,
// transfers, the marketplace and the staking engine. Every mutating
// operation runs inside a single storage transaction and either applies
// all of its effects or none of them.
type Service interface {
	Start() error
	Stop()
	Mint(ctx context.Context, caller, uri string, collateralAmount uint64) (uint64, error)
	Transfer(ctx context.Context, caller string, assetId uint64, recipient string) error
	List(ctx context.Context, caller string, assetId, price uint64) error
	Purchase(ctx context.Context, buyer string, assetId uint64) error
	Stake(ctx context.Context, caller string, assetId uint64) error
	Unstake(ctx context.Context, caller string, assetId uint64) error
	GetMetadata(ctx context.Context, assetId uint64) (*domain.Asset, error)
	GetListing(ctx context.Context, assetId uint64) (*domain.Listing, error)
	GetRewardAccount(ctx context.Context, assetId uint64) (*domain.RewardAccount, error)
	PendingYield(ctx context.Context, assetId uint64) (uint64, error)
	GetInfo(ctx context.Context) (*ServiceInfo, error)
}

type ServiceInfo struct {
	Deployer       string
	CustodyAccount string
	CustodyBalance uint64
	CurrentHeight  uint64
	Params         domain.Params
}

type Page struct {
	PageSize int32
	PageNum  int32
}

type PageResp struct {
	Current int32
	Next    int32
	Total   int32
}

// AssetWithOwner joins the immutable asset record with the current holder
// from the ownership store.
type AssetWithOwner struct {
	domain.Asset
	Owner string
}

type AssetsResp struct {
	Assets []AssetWithOwner
	Page   PageResp
}

type EventsResp struct {
	Events []domain.Event
	Page   PageResp
}

type LedgerStats struct {
	TotalAssets        int64
	ActiveListings     int64
	StakedAssets       int64
	DeclaredCollateral uint64
	CustodyBalance     uint64
	CurrentHeight      uint64
}
