package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/pkg/errors"
)

func TestParamsManagement(t *testing.T) {
	svc, admin, _ := newTestLedger(t)
	ctx := context.Background()

	t.Run("defaults are seeded at first start", func(t *testing.T) {
		params, err := admin.GetParams(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.DefaultParams(), *params)
	})

	t.Run("only the deployer may update", func(t *testing.T) {
		err := admin.UpdateParams(ctx, alice, domain.DefaultParams())
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.UNAUTHORIZED))
	})

	t.Run("updates persist and govern later operations", func(t *testing.T) {
		params := domain.Params{
			FeeBasisPoints:            100,
			MinCollateralRatioPercent: 200,
			YieldRateBasisPoints:      50,
		}
		require.NoError(t, admin.UpdateParams(ctx, testDeployer, params))

		stored, err := admin.GetParams(ctx)
		require.NoError(t, err)
		require.Equal(t, params, *stored)

		// at ratio 200% a 1000 collateral mint now needs 2000 on deposit
		require.NoError(t, admin.Deposit(ctx, alice, 1500))
		_, err = svc.Mint(ctx, alice, "ipfs://x", 1000)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INSUFFICIENT_FUNDS))

		require.NoError(t, admin.Deposit(ctx, alice, 500))
		_, err = svc.Mint(ctx, alice, "ipfs://x", 1000)
		require.NoError(t, err)
	})
}

func TestDeposit(t *testing.T) {
	_, admin, _ := newTestLedger(t)
	ctx := context.Background()

	t.Run("invalid parameters", func(t *testing.T) {
		err := admin.Deposit(ctx, "", 100)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))

		err = admin.Deposit(ctx, alice, 0)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))
	})

	t.Run("deposits accumulate", func(t *testing.T) {
		balance, err := admin.BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(0), balance)

		require.NoError(t, admin.Deposit(ctx, alice, 100))
		require.NoError(t, admin.Deposit(ctx, alice, 250))

		balance, err = admin.BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(350), balance)
	})
}

func TestAdvanceHeight(t *testing.T) {
	_, admin, repos := newTestLedger(t)
	ctx := context.Background()

	t.Run("zero blocks", func(t *testing.T) {
		_, err := admin.AdvanceHeight(ctx, 0)
		require.Error(t, err)
		require.True(t, errors.HasCode(err, errors.INVALID_PARAMETERS))
	})

	t.Run("height starts at zero and accumulates", func(t *testing.T) {
		height, err := repos.Heights().CurrentHeight(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(0), height)

		height, err = admin.AdvanceHeight(ctx, 5)
		require.NoError(t, err)
		require.Equal(t, uint64(5), height)

		height, err = admin.AdvanceHeight(ctx, 3)
		require.NoError(t, err)
		require.Equal(t, uint64(8), height)
	})
}
