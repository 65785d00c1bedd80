package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/internal/core/ports"
	"github.com/vaultmint/vaultd/pkg/errors"
)

// AdminService covers the host-side primitives that sit outside the
// ledger operations proper: protocol parameter management, the bank
// faucet and the block height.
type AdminService interface {
	GetParams(ctx context.Context) (*domain.Params, error)
	UpdateParams(ctx context.Context, caller string, params domain.Params) error
	Deposit(ctx context.Context, account string, amount uint64) error
	BalanceOf(ctx context.Context, account string) (uint64, error)
	AdvanceHeight(ctx context.Context, blocks uint64) (uint64, error)
}

type adminService struct {
	deployer    string
	repoManager ports.RepoManager
	heights     ports.HeightSource
}

func NewAdminService(repoManager ports.RepoManager, deployer string) AdminService {
	return &adminService{
		deployer:    deployer,
		repoManager: repoManager,
		heights:     repoManager.Heights(),
	}
}

func (a *adminService) GetParams(ctx context.Context) (*domain.Params, error) {
	params, err := a.repoManager.Params().Get(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		defaults := domain.DefaultParams()
		return &defaults, nil
	}
	return params, nil
}

func (a *adminService) UpdateParams(
	ctx context.Context, caller string, params domain.Params,
) error {
	if caller != a.deployer {
		return errors.UNAUTHORIZED.New("only the deployer can update params")
	}

	if err := a.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		height, err := a.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}
		if err := a.repoManager.Params().Upsert(ctx, params); err != nil {
			return err
		}
		return a.repoManager.Events().Save(
			ctx, domain.NewParamsUpdated(params, height),
		)
	}); err != nil {
		return err
	}

	log.Debugf(
		"updated params: fee %d bps, collateral ratio %d%%, yield %d bps",
		params.FeeBasisPoints, params.MinCollateralRatioPercent,
		params.YieldRateBasisPoints,
	)
	return nil
}

func (a *adminService) Deposit(
	ctx context.Context, account string, amount uint64,
) error {
	if account == "" {
		return errors.INVALID_PARAMETERS.New("missing account identity")
	}
	if amount <= 0 {
		return errors.INVALID_PARAMETERS.New("amount must be positive")
	}

	if err := a.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return a.repoManager.Balances().Credit(ctx, account, amount)
	}); err != nil {
		return err
	}

	log.Debugf("deposited %d to %s", amount, account)
	return nil
}

func (a *adminService) BalanceOf(
	ctx context.Context, account string,
) (uint64, error) {
	return a.repoManager.Balances().BalanceOf(ctx, account)
}

func (a *adminService) AdvanceHeight(
	ctx context.Context, blocks uint64,
) (uint64, error) {
	if blocks <= 0 {
		return 0, errors.INVALID_PARAMETERS.New("blocks must be positive")
	}
	return a.heights.Advance(ctx, blocks)
}
