package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

func TestIndexer(t *testing.T) {
	svc, admin, repos := newTestLedger(t)
	ctx := context.Background()
	indexer := NewIndexerService(repos, testCustody)

	// four assets: alice keeps 1 and 3, 2 goes to bob, 4 is sold to carol
	for _, owner := range []string{alice, alice, alice, bob} {
		mintFunded(t, svc, admin, owner, 100)
	}
	require.NoError(t, svc.Transfer(ctx, alice, 2, bob))
	require.NoError(t, svc.List(ctx, alice, 1, 100))
	require.NoError(t, svc.List(ctx, bob, 4, 100))
	require.NoError(t, admin.Deposit(ctx, carol, 200))
	require.NoError(t, svc.Purchase(ctx, carol, 4))
	require.NoError(t, svc.Stake(ctx, alice, 3))

	t.Run("get assets joins current owners", func(t *testing.T) {
		resp, err := indexer.GetAssets(ctx, nil)
		require.NoError(t, err)
		require.Len(t, resp.Assets, 4)

		owners := make(map[uint64]string)
		for _, asset := range resp.Assets {
			owners[asset.Id] = asset.Owner
		}
		require.Equal(t, map[uint64]string{
			1: alice, 2: bob, 3: alice, 4: carol,
		}, owners)
	})

	t.Run("get assets paginates", func(t *testing.T) {
		resp, err := indexer.GetAssets(ctx, &Page{PageSize: 3, PageNum: 1})
		require.NoError(t, err)
		require.Len(t, resp.Assets, 3)
		require.Equal(t, PageResp{Current: 1, Next: 2, Total: 2}, resp.Page)

		resp, err = indexer.GetAssets(ctx, &Page{PageSize: 3, PageNum: 2})
		require.NoError(t, err)
		require.Len(t, resp.Assets, 1)
		require.Equal(t, PageResp{Current: 2, Next: 2, Total: 2}, resp.Page)
	})

	t.Run("get assets by owner", func(t *testing.T) {
		assets, err := indexer.GetAssetsByOwner(ctx, alice)
		require.NoError(t, err)
		require.Len(t, assets, 2)
		for _, asset := range assets {
			require.Equal(t, alice, asset.Owner)
			require.Contains(t, []uint64{1, 3}, asset.Id)
		}

		assets, err = indexer.GetAssetsByOwner(ctx, dave)
		require.NoError(t, err)
		require.Empty(t, assets)
	})

	t.Run("active listings exclude consumed ones", func(t *testing.T) {
		listings, err := indexer.GetActiveListings(ctx)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		require.Equal(t, uint64(1), listings[0].AssetId)
	})

	t.Run("staked assets", func(t *testing.T) {
		staked, err := indexer.GetStakedAssets(ctx)
		require.NoError(t, err)
		require.Len(t, staked, 1)
		require.Equal(t, uint64(3), staked[0].Id)
	})

	t.Run("get owner", func(t *testing.T) {
		owner, err := indexer.GetOwner(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, bob, owner)

		owner, err = indexer.GetOwner(ctx, 99)
		require.NoError(t, err)
		require.Empty(t, owner)
	})

	t.Run("stats aggregate the whole ledger", func(t *testing.T) {
		stats, err := indexer.GetStats(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(4), stats.TotalAssets)
		require.Equal(t, int64(1), stats.ActiveListings)
		require.Equal(t, int64(1), stats.StakedAssets)
		require.Equal(t, uint64(400), stats.DeclaredCollateral)
		require.Equal(t, uint64(600), stats.CustodyBalance)
		require.Equal(t, uint64(0), stats.CurrentHeight)
	})

	t.Run("asset events paginate", func(t *testing.T) {
		resp, err := indexer.GetAssetEvents(ctx, 4, nil)
		require.NoError(t, err)
		require.Len(t, resp.Events, 3)
		require.Equal(t, domain.EventTypeAssetMinted, resp.Events[0].GetType())
		require.Equal(t, domain.EventTypeAssetListed, resp.Events[1].GetType())
		require.Equal(t, domain.EventTypeAssetPurchased, resp.Events[2].GetType())

		resp, err = indexer.GetAssetEvents(ctx, 4, &Page{PageSize: 2, PageNum: 2})
		require.NoError(t, err)
		require.Len(t, resp.Events, 1)
		require.Equal(t, PageResp{Current: 2, Next: 2, Total: 2}, resp.Page)
	})

	t.Run("events of an unknown asset", func(t *testing.T) {
		resp, err := indexer.GetAssetEvents(ctx, 99, nil)
		require.NoError(t, err)
		require.Empty(t, resp.Events)
	})
}
