package application

import (
	"context"

	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/internal/core/ports"
)

const (
	maxPageSizeAssets = 100
	maxPageSizeEvents = 200
)

// IndexerService is the read side of the ledger: paged views over assets,
// listings, staking state and the event journal.
type IndexerService interface {
	GetAssets(ctx context.Context, page *Page) (*AssetsResp, error)
	GetAssetsByOwner(ctx context.Context, owner string) ([]AssetWithOwner, error)
	GetActiveListings(ctx context.Context) ([]domain.Listing, error)
	GetStakedAssets(ctx context.Context) ([]domain.Asset, error)
	GetAssetEvents(
		ctx context.Context, assetId uint64, page *Page,
	) (*EventsResp, error)
	GetOwner(ctx context.Context, assetId uint64) (string, error)
	GetStats(ctx context.Context) (*LedgerStats, error)
}

type indexerService struct {
	custody     string
	repoManager ports.RepoManager
}

func NewIndexerService(
	repoManager ports.RepoManager, custodyAccount string,
) IndexerService {
	return &indexerService{
		custody:     custodyAccount,
		repoManager: repoManager,
	}
}

func (i *indexerService) GetAssets(
	ctx context.Context, page *Page,
) (*AssetsResp, error) {
	assets, err := i.repoManager.Assets().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	paged, pageResp := paginate(assets, page, maxPageSizeAssets)
	joined, err := i.joinOwners(ctx, paged)
	if err != nil {
		return nil, err
	}

	return &AssetsResp{Assets: joined, Page: pageResp}, nil
}

func (i *indexerService) GetAssetsByOwner(
	ctx context.Context, owner string,
) ([]AssetWithOwner, error) {
	assets, err := i.repoManager.Assets().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// The ownership store has no reverse index, scan and filter.
	filtered := make([]AssetWithOwner, 0, len(assets))
	for _, asset := range assets {
		holder, err := i.repoManager.Owners().OwnerOf(ctx, asset.Id)
		if err != nil {
			return nil, err
		}
		if holder == owner {
			filtered = append(filtered, AssetWithOwner{Asset: asset, Owner: holder})
		}
	}
	return filtered, nil
}

func (i *indexerService) GetActiveListings(
	ctx context.Context,
) ([]domain.Listing, error) {
	return i.repoManager.Listings().GetActive(ctx)
}

func (i *indexerService) GetStakedAssets(
	ctx context.Context,
) ([]domain.Asset, error) {
	return i.repoManager.Assets().GetStaked(ctx)
}

func (i *indexerService) GetAssetEvents(
	ctx context.Context, assetId uint64, page *Page,
) (*EventsResp, error) {
	events, err := i.repoManager.Events().GetByAssetId(ctx, assetId)
	if err != nil {
		return nil, err
	}

	paged, pageResp := paginate(events, page, maxPageSizeEvents)
	return &EventsResp{Events: paged, Page: pageResp}, nil
}

func (i *indexerService) GetOwner(
	ctx context.Context, assetId uint64,
) (string, error) {
	return i.repoManager.Owners().OwnerOf(ctx, assetId)
}

func (i *indexerService) GetStats(ctx context.Context) (*LedgerStats, error) {
	assets, err := i.repoManager.Assets().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := i.repoManager.Listings().GetActive(ctx)
	if err != nil {
		return nil, err
	}
	staked, err := i.repoManager.Assets().GetStaked(ctx)
	if err != nil {
		return nil, err
	}
	custodyBalance, err := i.repoManager.Balances().BalanceOf(ctx, i.custody)
	if err != nil {
		return nil, err
	}
	height, err := i.repoManager.Heights().CurrentHeight(ctx)
	if err != nil {
		return nil, err
	}

	var declaredCollateral uint64
	for _, asset := range assets {
		declaredCollateral += asset.CollateralAmount
	}

	return &LedgerStats{
		TotalAssets:        int64(len(assets)),
		ActiveListings:     int64(len(listings)),
		StakedAssets:       int64(len(staked)),
		DeclaredCollateral: declaredCollateral,
		CustodyBalance:     custodyBalance,
		CurrentHeight:      height,
	}, nil
}

func (i *indexerService) joinOwners(
	ctx context.Context, assets []domain.Asset,
) ([]AssetWithOwner, error) {
	joined := make([]AssetWithOwner, 0, len(assets))
	for _, asset := range assets {
		holder, err := i.repoManager.Owners().OwnerOf(ctx, asset.Id)
		if err != nil {
			return nil, err
		}
		joined = append(joined, AssetWithOwner{Asset: asset, Owner: holder})
	}
	return joined, nil
}
