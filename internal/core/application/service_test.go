package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/internal/core/ports"
	"github.com/vaultmint/vaultd/internal/infrastructure/db"
	"github.com/vaultmint/vaultd/pkg/errors"
)

const (
	testDeployer = "deployer"
	testCustody  = "vault"
	alice        = "alice"
	bob          = "bob"
	carol        = "carol"
	dave         = "dave"
)

func newTestLedger(t *testing.T) (Service, AdminService, ports.RepoManager) {
	repoManager, err := db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)

	svc, err := NewService(repoManager, testDeployer, testCustody, domain.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	return svc, NewAdminService(repoManager, testDeployer), repoManager
}

// mintFunded deposits exactly the collateral the default params require and
// mints, leaving the owner's balance at zero.
func mintFunded(
	t *testing.T, svc Service, admin AdminService, owner string, collateral uint64,
) uint64 {
	ctx := context.Background()
	locked := domain.DefaultParams().RequiredCollateral(collateral)
	if locked > 0 {
		require.NoError(t, admin.Deposit(ctx, owner, locked))
	}
	assetId, err := svc.Mint(ctx, owner, "ipfs://asset", collateral)
	require.NoError(t, err)
	return assetId
}

func TestServiceIdentities(t *testing.T) {
	repoManager, err := db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	fixtures := []struct {
		name     string
		deployer string
		custody  string
	}{
		{"missing deployer", "", testCustody},
		{"missing custody account", testDeployer, ""},
		{"custody account equals deployer", testDeployer, testDeployer},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			_, err := NewService(repoManager, f.deployer, f.custody, domain.DefaultParams())
			require.Error(t, err)
		})
	}
}

func TestMintAsset(t *testing.T) {
	svc, admin, repos := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, admin.Deposit(ctx, alice, 5000))

	t.Run("ids start from 1 and increase", func(t *testing.T) {
		firstId, err := svc.Mint(ctx, alice, "ipfs://one", 1000)
		require.NoError(t, err)
		require.Equal(t, uint64(1), firstId)

		secondId, err := svc.Mint(ctx, alice, "ipfs://two", 1000)
		require.NoError(t, err)
		require.Equal(t, uint64(2), secondId)
	})

	t.Run("collateral is locked into custody", func(t *testing.T) {
		// two mints at ratio 150% locked 1500 each
		balance, err := admin.BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(2000), balance)

		custodyBalance, err := admin.BalanceOf(ctx, testCustody)
		require.NoError(t, err)
		require.Equal(t, uint64(3000), custodyBalance)
	})

	t.Run("metadata records the mint", func(t *testing.T) {
		asset, err := svc.GetMetadata(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, alice, asset.Creator)
		require.Equal(t, "ipfs://one", asset.Uri)
		require.Equal(t, uint64(1000), asset.CollateralAmount)
		require.False(t, asset.Staked)

		owner, err := repos.Owners().OwnerOf(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, alice, owner)
	})

	t.Run("metadata of an unknown asset", func(t *testing.T) {
		asset, err := svc.GetMetadata(ctx, 99)
		require.NoError(t, err)
		require.Nil(t, asset)
	})

	t.Run("insufficient collateral", func(t *testing.T) {
		// alice holds 2000, declaring 2000 requires 3000
		_, err := svc.Mint(ctx, alice, "ipfs://three", 2000)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INSUFFICIENT_FUNDS))
	})

	t.Run("invalid parameters", func(t *testing.T) {
		fixtures := []struct {
			name   string
			caller string
			uri    string
		}{
			{"missing caller", "", "ipfs://x"},
			{"empty uri", alice, ""},
			{"uri too long", alice, strings.Repeat("a", domain.MaxUriLength+1)},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				_, err := svc.Mint(ctx, f.caller, f.uri, 100)
				require.Error(t, err)
				require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))
			})
		}
	})

	t.Run("uri bounds are inclusive", func(t *testing.T) {
		require.NoError(t, admin.Deposit(ctx, bob, 300))

		assetId, err := svc.Mint(ctx, bob, strings.Repeat("a", domain.MaxUriLength), 100)
		require.NoError(t, err)
		require.Equal(t, uint64(3), assetId)

		assetId, err = svc.Mint(ctx, bob, "u", 100)
		require.NoError(t, err)
		require.Equal(t, uint64(4), assetId)
	})

	t.Run("failed mint does not break the sequence", func(t *testing.T) {
		_, err := svc.Mint(ctx, carol, "ipfs://broke", 1000)
		require.Error(t, err)

		require.NoError(t, admin.Deposit(ctx, carol, 1500))
		assetId, err := svc.Mint(ctx, carol, "ipfs://funded", 1000)
		require.NoError(t, err)
		require.Equal(t, uint64(5), assetId)
	})

	t.Run("zero declared collateral locks nothing", func(t *testing.T) {
		assetId, err := svc.Mint(ctx, dave, "ipfs://free", 0)
		require.NoError(t, err)
		require.Equal(t, uint64(6), assetId)

		balance, err := admin.BalanceOf(ctx, dave)
		require.NoError(t, err)
		require.Equal(t, uint64(0), balance)
	})
}

func TestTransferAsset(t *testing.T) {
	svc, admin, repos := newTestLedger(t)
	ctx := context.Background()

	assetId := mintFunded(t, svc, admin, alice, 1000)

	t.Run("unknown asset", func(t *testing.T) {
		err := svc.Transfer(ctx, alice, 99, bob)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.NOT_FOUND))
	})

	t.Run("only owner or deployer may transfer", func(t *testing.T) {
		err := svc.Transfer(ctx, bob, assetId, carol)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.UNAUTHORIZED))
	})

	t.Run("invalid recipient", func(t *testing.T) {
		err := svc.Transfer(ctx, alice, assetId, "")
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))

		err = svc.Transfer(ctx, alice, assetId, alice)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))
	})

	t.Run("owner transfers to recipient", func(t *testing.T) {
		require.NoError(t, svc.Transfer(ctx, alice, assetId, bob))

		owner, err := repos.Owners().OwnerOf(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, bob, owner)
	})

	t.Run("stale owner cannot transfer back", func(t *testing.T) {
		err := svc.Transfer(ctx, alice, assetId, carol)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.UNAUTHORIZED))
	})

	t.Run("deployer moves the asset on behalf of the holder", func(t *testing.T) {
		require.NoError(t, svc.Transfer(ctx, testDeployer, assetId, carol))

		owner, err := repos.Owners().OwnerOf(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, carol, owner)
	})
}

func TestMarketplace(t *testing.T) {
	svc, admin, repos := newTestLedger(t)
	ctx := context.Background()

	assetId := mintFunded(t, svc, admin, alice, 1000)

	t.Run("listing an unknown asset fails closed", func(t *testing.T) {
		err := svc.List(ctx, alice, 99, 500)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.UNAUTHORIZED))
	})

	t.Run("only the owner may list", func(t *testing.T) {
		err := svc.List(ctx, bob, assetId, 500)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.UNAUTHORIZED))
	})

	t.Run("price must be positive", func(t *testing.T) {
		err := svc.List(ctx, alice, assetId, 0)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))
	})

	t.Run("purchase requires an active listing", func(t *testing.T) {
		err := svc.Purchase(ctx, bob, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.LISTING_NOT_FOUND))
	})

	t.Run("owner lists the asset", func(t *testing.T) {
		require.NoError(t, svc.List(ctx, alice, assetId, 500))

		listing, err := svc.GetListing(ctx, assetId)
		require.NoError(t, err)
		require.NotNil(t, listing)
		require.Equal(t, uint64(500), listing.Price)
		require.Equal(t, alice, listing.Seller)
		require.True(t, listing.Active)
	})

	t.Run("relisting is rejected", func(t *testing.T) {
		err := svc.List(ctx, alice, assetId, 600)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.LISTING_EXISTS))
	})

	t.Run("buyer covering price but not fee aborts cleanly", func(t *testing.T) {
		require.NoError(t, admin.Deposit(ctx, bob, 500))

		err := svc.Purchase(ctx, bob, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INSUFFICIENT_FUNDS))

		balance, err := admin.BalanceOf(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(500), balance)

		owner, err := repos.Owners().OwnerOf(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, alice, owner)

		listing, err := svc.GetListing(ctx, assetId)
		require.NoError(t, err)
		require.True(t, listing.Active)
	})

	t.Run("settlement pays seller in full and fees the deployer", func(t *testing.T) {
		require.NoError(t, admin.Deposit(ctx, bob, 100))

		require.NoError(t, svc.Purchase(ctx, bob, assetId))

		// price 500 plus fee 12 on top
		bobBalance, err := admin.BalanceOf(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(88), bobBalance)

		aliceBalance, err := admin.BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(500), aliceBalance)

		deployerBalance, err := admin.BalanceOf(ctx, testDeployer)
		require.NoError(t, err)
		require.Equal(t, uint64(12), deployerBalance)

		owner, err := repos.Owners().OwnerOf(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, bob, owner)

		listing, err := svc.GetListing(ctx, assetId)
		require.NoError(t, err)
		require.False(t, listing.Active)
		require.Equal(t, uint64(0), listing.Price)
		require.Equal(t, alice, listing.Seller)
	})

	t.Run("a consumed listing cannot be bought again", func(t *testing.T) {
		require.NoError(t, admin.Deposit(ctx, carol, 1000))

		err := svc.Purchase(ctx, carol, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.LISTING_NOT_FOUND))
	})

	t.Run("a consumed listing blocks relisting", func(t *testing.T) {
		err := svc.List(ctx, bob, assetId, 700)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.LISTING_EXISTS))
	})

	t.Run("fee below one unit is floored away", func(t *testing.T) {
		secondAsset := mintFunded(t, svc, admin, carol, 100)
		require.NoError(t, svc.List(ctx, carol, secondAsset, 39))

		// bob holds 88, pays 39 and no fee
		require.NoError(t, svc.Purchase(ctx, bob, secondAsset))

		bobBalance, err := admin.BalanceOf(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(49), bobBalance)

		deployerBalance, err := admin.BalanceOf(ctx, testDeployer)
		require.NoError(t, err)
		require.Equal(t, uint64(12), deployerBalance)
	})
}

func TestPurchaseRollsBackOnSettlementFailure(t *testing.T) {
	svc, admin, repos := newTestLedger(t)
	ctx := context.Background()

	assetId := mintFunded(t, svc, admin, alice, 100)
	require.NoError(t, svc.List(ctx, alice, assetId, 100))

	// the listing survives an ownership change, leaving a stale seller
	require.NoError(t, svc.Transfer(ctx, alice, assetId, bob))

	require.NoError(t, admin.Deposit(ctx, carol, 200))
	err := svc.Purchase(ctx, carol, assetId)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.TRANSFER_FAILED))

	// the payment legs ran before the ownership move failed, all rolled back
	carolBalance, err := admin.BalanceOf(ctx, carol)
	require.NoError(t, err)
	require.Equal(t, uint64(200), carolBalance)

	aliceBalance, err := admin.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(0), aliceBalance)

	owner, err := repos.Owners().OwnerOf(ctx, assetId)
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	listing, err := svc.GetListing(ctx, assetId)
	require.NoError(t, err)
	require.True(t, listing.Active)
}

func TestStaking(t *testing.T) {
	svc, admin, _ := newTestLedger(t)
	ctx := context.Background()

	assetId := mintFunded(t, svc, admin, alice, 1000)

	t.Run("unknown asset", func(t *testing.T) {
		err := svc.Stake(ctx, alice, 99)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.NOT_FOUND))
	})

	t.Run("only owner or deployer may stake", func(t *testing.T) {
		err := svc.Stake(ctx, bob, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.UNAUTHORIZED))
	})

	t.Run("unstake requires a staked asset", func(t *testing.T) {
		err := svc.Unstake(ctx, alice, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.NOT_STAKED))
	})

	t.Run("stake opens the reward account at the current height", func(t *testing.T) {
		_, err := admin.AdvanceHeight(ctx, 10)
		require.NoError(t, err)

		require.NoError(t, svc.Stake(ctx, alice, assetId))

		asset, err := svc.GetMetadata(ctx, assetId)
		require.NoError(t, err)
		require.True(t, asset.Staked)
		require.Equal(t, uint64(10), asset.StakeStartHeight)

		account, err := svc.GetRewardAccount(ctx, assetId)
		require.NoError(t, err)
		require.NotNil(t, account)
		require.Equal(t, uint64(0), account.AccumulatedYield)
		require.Equal(t, uint64(10), account.LastClaimHeight)
	})

	t.Run("staking twice", func(t *testing.T) {
		err := svc.Stake(ctx, alice, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.ALREADY_STAKED))
	})

	t.Run("the default yield rate floors to zero", func(t *testing.T) {
		_, err := admin.AdvanceHeight(ctx, 1000)
		require.NoError(t, err)

		reward, err := svc.PendingYield(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, uint64(0), reward)
	})

	t.Run("unstake with zero yield moves no funds", func(t *testing.T) {
		require.NoError(t, svc.Unstake(ctx, alice, assetId))

		asset, err := svc.GetMetadata(ctx, assetId)
		require.NoError(t, err)
		require.False(t, asset.Staked)
		require.Equal(t, uint64(0), asset.StakeStartHeight)

		balance, err := admin.BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(0), balance)

		custodyBalance, err := admin.BalanceOf(ctx, testCustody)
		require.NoError(t, err)
		require.Equal(t, uint64(1500), custodyBalance)
	})

	t.Run("one unit per block at a full rate", func(t *testing.T) {
		params := domain.DefaultParams()
		params.YieldRateBasisPoints = domain.BlocksPerYear
		require.NoError(t, admin.UpdateParams(ctx, testDeployer, params))

		// height 1010
		require.NoError(t, svc.Stake(ctx, alice, assetId))
		_, err := admin.AdvanceHeight(ctx, 10)
		require.NoError(t, err)

		reward, err := svc.PendingYield(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, uint64(10), reward)

		require.NoError(t, svc.Unstake(ctx, alice, assetId))

		balance, err := admin.BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(10), balance)

		custodyBalance, err := admin.BalanceOf(ctx, testCustody)
		require.NoError(t, err)
		require.Equal(t, uint64(1490), custodyBalance)

		account, err := svc.GetRewardAccount(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, uint64(0), account.AccumulatedYield)
		require.Equal(t, uint64(1020), account.LastClaimHeight)
	})

	t.Run("restaking accrues from the new height only", func(t *testing.T) {
		require.NoError(t, svc.Stake(ctx, alice, assetId))
		_, err := admin.AdvanceHeight(ctx, 5)
		require.NoError(t, err)

		reward, err := svc.PendingYield(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, uint64(5), reward)

		require.NoError(t, svc.Unstake(ctx, alice, assetId))
	})

	t.Run("a drained custody account aborts the claim", func(t *testing.T) {
		// custody holds 1485, two thousand blocks accrue more than that
		require.NoError(t, svc.Stake(ctx, alice, assetId))
		_, err := admin.AdvanceHeight(ctx, 2000)
		require.NoError(t, err)

		err = svc.Unstake(ctx, alice, assetId)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.TRANSFER_FAILED))

		asset, err := svc.GetMetadata(ctx, assetId)
		require.NoError(t, err)
		require.True(t, asset.Staked)

		account, err := svc.GetRewardAccount(ctx, assetId)
		require.NoError(t, err)
		require.Equal(t, uint64(1025), account.LastClaimHeight)
	})

	t.Run("pending yield for a never staked asset", func(t *testing.T) {
		other := mintFunded(t, svc, admin, bob, 100)

		_, err := svc.PendingYield(ctx, other)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.NOT_STAKED))
	})

	t.Run("pending yield for an unknown asset", func(t *testing.T) {
		_, err := svc.PendingYield(ctx, 99)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.NOT_FOUND))
	})
}

func TestLedgerScenario(t *testing.T) {
	svc, admin, repos := newTestLedger(t)
	ctx := context.Background()
	indexer := NewIndexerService(repos, testCustody)

	// alice mints with 2000 on deposit, locking 1500
	require.NoError(t, admin.Deposit(ctx, alice, 2000))
	assetId, err := svc.Mint(ctx, alice, "ipfs://genesis", 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1), assetId)

	// alice sells to bob at 500, fee 12 on top
	require.NoError(t, svc.List(ctx, alice, assetId, 500))
	require.NoError(t, admin.Deposit(ctx, bob, 600))
	require.NoError(t, svc.Purchase(ctx, bob, assetId))

	for account, expected := range map[string]uint64{
		alice:        500 + 500,
		bob:          88,
		testDeployer: 12,
		testCustody:  1500,
	} {
		balance, err := admin.BalanceOf(ctx, account)
		require.NoError(t, err)
		require.Equal(t, expected, balance, "balance of %s", account)
	}

	// bob stakes at a rate of one unit per block
	params := domain.DefaultParams()
	params.YieldRateBasisPoints = domain.BlocksPerYear
	require.NoError(t, admin.UpdateParams(ctx, testDeployer, params))
	require.NoError(t, svc.Stake(ctx, bob, assetId))

	_, err = admin.AdvanceHeight(ctx, 100)
	require.NoError(t, err)

	reward, err := svc.PendingYield(ctx, assetId)
	require.NoError(t, err)
	require.Equal(t, uint64(100), reward)

	require.NoError(t, svc.Unstake(ctx, bob, assetId))

	bobBalance, err := admin.BalanceOf(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(188), bobBalance)

	custodyBalance, err := admin.BalanceOf(ctx, testCustody)
	require.NoError(t, err)
	require.Equal(t, uint64(1400), custodyBalance)

	info, err := svc.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, testDeployer, info.Deployer)
	require.Equal(t, testCustody, info.CustodyAccount)
	require.Equal(t, uint64(1400), info.CustodyBalance)
	require.Equal(t, uint64(100), info.CurrentHeight)
	require.Equal(t, params, info.Params)

	// the journal tells the asset's whole story in order
	resp, err := indexer.GetAssetEvents(ctx, assetId, nil)
	require.NoError(t, err)
	expectedTypes := []domain.EventType{
		domain.EventTypeAssetMinted,
		domain.EventTypeAssetListed,
		domain.EventTypeAssetPurchased,
		domain.EventTypeAssetStaked,
		domain.EventTypeYieldClaimed,
		domain.EventTypeAssetUnstaked,
	}
	require.Len(t, resp.Events, len(expectedTypes))
	for i, event := range resp.Events {
		require.Equal(t, expectedTypes[i], event.GetType())
	}
}
