package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/internal/core/ports"
	"github.com/vaultmint/vaultd/pkg/errors"
)

type service struct {
	// identities
	deployer string
	custody  string

	// protocol parameters used to seed the store on first start
	initialParams domain.Params

	repoManager ports.RepoManager
	heights     ports.HeightSource
}

func NewService(
	repoManager ports.RepoManager,
	deployer, custodyAccount string,
	initialParams domain.Params,
) (Service, error) {
	if deployer == "" {
		return nil, fmt.Errorf("missing deployer identity")
	}
	if custodyAccount == "" {
		return nil, fmt.Errorf("missing custody account")
	}
	if custodyAccount == deployer {
		return nil, fmt.Errorf(
			"custody account must be distinct from the deployer identity",
		)
	}

	svc := &service{
		deployer:      deployer,
		custody:       custodyAccount,
		initialParams: initialParams,
		repoManager:   repoManager,
		heights:       repoManager.Heights(),
	}
	return svc, nil
}

func (s *service) Start() error {
	ctx := context.Background()
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		params, err := s.repoManager.Params().Get(ctx)
		if err != nil {
			return err
		}
		if params != nil {
			return nil
		}
		return s.repoManager.Params().Upsert(ctx, s.initialParams)
	}); err != nil {
		return fmt.Errorf("failed to seed protocol params: %s", err)
	}

	log.Debug("ledger service started")
	return nil
}

func (s *service) Stop() {
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

// Mint issues a new asset to the caller after locking the required
// collateral into the custody account. The issued id is strictly
// increasing and never reused, even across failed attempts.
func (s *service) Mint(
	ctx context.Context, caller, uri string, collateralAmount uint64,
) (uint64, error) {
	if caller == "" {
		return 0, errors.INVALID_PARAMETERS.New("missing caller identity")
	}
	if len(uri) <= 0 || len(uri) > domain.MaxUriLength {
		return 0, errors.INVALID_PARAMETERS.New(
			"uri must be 1 to %d bytes, got %d", domain.MaxUriLength, len(uri),
		)
	}

	var assetId uint64
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		params, err := s.params(ctx)
		if err != nil {
			return err
		}
		height, err := s.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}

		minCollateral := params.RequiredCollateral(collateralAmount)
		balance, err := s.repoManager.Balances().BalanceOf(ctx, caller)
		if err != nil {
			return err
		}
		if balance < minCollateral {
			return errors.INSUFFICIENT_FUNDS.New(
				"balance %d below required collateral %d", balance, minCollateral,
			)
		}
		if err := s.repoManager.Balances().Transfer(
			ctx, caller, s.custody, minCollateral,
		); err != nil {
			return errors.INSUFFICIENT_FUNDS.Wrap(err)
		}

		id, err := s.repoManager.Assets().NextId(ctx)
		if err != nil {
			return err
		}
		if err := s.repoManager.Owners().SetOwner(ctx, id, caller); err != nil {
			return errors.TRANSFER_FAILED.Wrap(err)
		}

		asset := domain.Asset{
			Id:               id,
			Creator:          caller,
			Uri:              uri,
			CollateralAmount: collateralAmount,
		}
		if err := s.repoManager.Assets().Add(ctx, asset); err != nil {
			return err
		}
		assetId = id

		return s.repoManager.Events().Save(
			ctx, domain.NewAssetMinted(asset, minCollateral, height),
		)
	}); err != nil {
		return 0, err
	}

	log.Debugf("minted asset %d for %s", assetId, caller)
	return assetId, nil
}

// Transfer reassigns ownership of an asset. The caller must be the current
// owner or the deployer; the move always starts from the recorded owner,
// so a deployer-forced transfer debits the real holder, not the deployer.
func (s *service) Transfer(
	ctx context.Context, caller string, assetId uint64, recipient string,
) error {
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		asset, err := s.repoManager.Assets().Get(ctx, assetId)
		if err != nil {
			return err
		}
		if asset == nil {
			return errors.NOT_FOUND.New("asset %d not found", assetId)
		}
		if !isAuthorized(ctx, s.repoManager.Owners(), s.deployer, caller, assetId) {
			return errors.UNAUTHORIZED.New(
				"%s is neither owner of asset %d nor deployer", caller, assetId,
			)
		}
		if recipient == "" || recipient == caller {
			return errors.INVALID_PARAMETERS.New(
				"recipient must be set and different from caller",
			)
		}

		height, err := s.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}
		owner, err := s.repoManager.Owners().OwnerOf(ctx, assetId)
		if err != nil {
			return err
		}
		if err := s.repoManager.Owners().TransferOwner(
			ctx, assetId, owner, recipient,
		); err != nil {
			return errors.TRANSFER_FAILED.Wrap(err)
		}

		return s.repoManager.Events().Save(
			ctx, domain.NewAssetTransferred(assetId, owner, recipient, height),
		)
	}); err != nil {
		return err
	}

	log.Debugf("transferred asset %d from %s to %s", assetId, caller, recipient)
	return nil
}

// List puts an asset up for sale. Note the authorization check runs against
// the ownership store alone, without resolving the asset record first, so
// listing an unknown id fails closed as unauthorized rather than not found.
func (s *service) List(
	ctx context.Context, caller string, assetId, price uint64,
) error {
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if !isAuthorized(ctx, s.repoManager.Owners(), s.deployer, caller, assetId) {
			return errors.UNAUTHORIZED.New(
				"%s is neither owner of asset %d nor deployer", caller, assetId,
			)
		}
		if price <= 0 {
			return errors.INVALID_PARAMETERS.New("price must be positive")
		}

		// Any listing record blocks relisting, consumed ones included.
		existing, err := s.repoManager.Listings().Get(ctx, assetId)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.LISTING_EXISTS.New(
				"asset %d already has a listing record", assetId,
			)
		}

		height, err := s.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}
		listing := domain.Listing{
			AssetId: assetId,
			Price:   price,
			Seller:  caller,
			Active:  true,
		}
		if err := s.repoManager.Listings().Add(ctx, listing); err != nil {
			return err
		}

		return s.repoManager.Events().Save(
			ctx, domain.NewAssetListed(listing, height),
		)
	}); err != nil {
		return err
	}

	log.Debugf("listed asset %d at price %d", assetId, price)
	return nil
}

// Purchase settles an active listing: the buyer pays the listed price to
// the seller plus the protocol fee on top to the deployer, and ownership
// moves from the listing's seller to the buyer. The upfront check covers
// the price only, so a buyer holding exactly the price still fails on the
// fee leg and the whole settlement rolls back.
func (s *service) Purchase(ctx context.Context, buyer string, assetId uint64) error {
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		listing, err := s.repoManager.Listings().Get(ctx, assetId)
		if err != nil {
			return err
		}
		if listing == nil || !listing.Active {
			return errors.LISTING_NOT_FOUND.New(
				"no active listing for asset %d", assetId,
			)
		}

		params, err := s.params(ctx)
		if err != nil {
			return err
		}
		height, err := s.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}

		fee := params.SaleFee(listing.Price)
		balance, err := s.repoManager.Balances().BalanceOf(ctx, buyer)
		if err != nil {
			return err
		}
		if balance < listing.Price {
			return errors.INSUFFICIENT_FUNDS.New(
				"balance %d below listing price %d", balance, listing.Price,
			)
		}

		if err := s.repoManager.Balances().Transfer(
			ctx, buyer, listing.Seller, listing.Price,
		); err != nil {
			return errors.INSUFFICIENT_FUNDS.Wrap(err)
		}
		if err := s.repoManager.Balances().Transfer(
			ctx, buyer, s.deployer, fee,
		); err != nil {
			return errors.INSUFFICIENT_FUNDS.Wrap(err)
		}
		if err := s.repoManager.Owners().TransferOwner(
			ctx, assetId, listing.Seller, buyer,
		); err != nil {
			return errors.TRANSFER_FAILED.Wrap(err)
		}

		seller, price := listing.Seller, listing.Price
		listing.Price = 0
		listing.Active = false
		if err := s.repoManager.Listings().Update(ctx, *listing); err != nil {
			return err
		}

		return s.repoManager.Events().Save(
			ctx, domain.NewAssetPurchased(assetId, buyer, seller, price, fee, height),
		)
	}); err != nil {
		return err
	}

	log.Debugf("asset %d purchased by %s", assetId, buyer)
	return nil
}

// Stake locks an asset into the staking engine and opens its reward
// account at the current height.
func (s *service) Stake(ctx context.Context, caller string, assetId uint64) error {
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		asset, err := s.repoManager.Assets().Get(ctx, assetId)
		if err != nil {
			return err
		}
		if asset == nil {
			return errors.NOT_FOUND.New("asset %d not found", assetId)
		}
		if !isAuthorized(ctx, s.repoManager.Owners(), s.deployer, caller, assetId) {
			return errors.UNAUTHORIZED.New(
				"%s is neither owner of asset %d nor deployer", caller, assetId,
			)
		}
		if asset.Staked {
			return errors.ALREADY_STAKED.New("asset %d is already staked", assetId)
		}

		height, err := s.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}

		asset.Staked = true
		asset.StakeStartHeight = height
		if err := s.repoManager.Assets().Update(ctx, *asset); err != nil {
			return err
		}
		if err := s.repoManager.Rewards().Upsert(ctx, domain.RewardAccount{
			AssetId:         assetId,
			LastClaimHeight: height,
		}); err != nil {
			return err
		}

		return s.repoManager.Events().Save(
			ctx, domain.NewAssetStaked(assetId, caller, height),
		)
	}); err != nil {
		return err
	}

	log.Debugf("staked asset %d", assetId)
	return nil
}

// Unstake claims the accrued yield and releases the asset from the staking
// engine. Claim failures propagate unchanged and leave the asset staked.
func (s *service) Unstake(ctx context.Context, caller string, assetId uint64) error {
	if err := s.repoManager.RunInTransaction(ctx, func(ctx context.Context) error {
		asset, err := s.repoManager.Assets().Get(ctx, assetId)
		if err != nil {
			return err
		}
		if asset == nil {
			return errors.NOT_FOUND.New("asset %d not found", assetId)
		}
		if !isAuthorized(ctx, s.repoManager.Owners(), s.deployer, caller, assetId) {
			return errors.UNAUTHORIZED.New(
				"%s is neither owner of asset %d nor deployer", caller, assetId,
			)
		}
		if !asset.Staked {
			return errors.NOT_STAKED.New("asset %d is not staked", assetId)
		}

		height, err := s.heights.CurrentHeight(ctx)
		if err != nil {
			return err
		}
		reward, owner, err := s.claim(ctx, asset, height)
		if err != nil {
			return err
		}

		asset.Staked = false
		asset.StakeStartHeight = 0
		if err := s.repoManager.Assets().Update(ctx, *asset); err != nil {
			return err
		}

		return s.repoManager.Events().Save(
			ctx, domain.NewAssetUnstaked(assetId, owner, reward, height),
		)
	}); err != nil {
		return err
	}

	log.Debugf("unstaked asset %d", assetId)
	return nil
}

// GetMetadata returns the asset record, nil if the id was never issued.
func (s *service) GetMetadata(
	ctx context.Context, assetId uint64,
) (*domain.Asset, error) {
	return s.repoManager.Assets().Get(ctx, assetId)
}

// GetListing returns the listing record for an asset whether it is still
// active or already consumed, nil if the asset was never listed.
func (s *service) GetListing(
	ctx context.Context, assetId uint64,
) (*domain.Listing, error) {
	return s.repoManager.Listings().Get(ctx, assetId)
}

// GetRewardAccount returns the reward account as persisted, without
// accruing pending yield. Nil means the asset was never staked.
func (s *service) GetRewardAccount(
	ctx context.Context, assetId uint64,
) (*domain.RewardAccount, error) {
	return s.repoManager.Rewards().Get(ctx, assetId)
}

// PendingYield computes the reward claimable right now. It reads the
// asset's stake start height and the reward account but not the staked
// flag, mirroring what a claim at the current height would pay out.
func (s *service) PendingYield(ctx context.Context, assetId uint64) (uint64, error) {
	asset, err := s.repoManager.Assets().Get(ctx, assetId)
	if err != nil {
		return 0, err
	}
	if asset == nil {
		return 0, errors.NOT_FOUND.New("asset %d not found", assetId)
	}
	account, err := s.repoManager.Rewards().Get(ctx, assetId)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, errors.NOT_STAKED.New("no reward account for asset %d", assetId)
	}
	params, err := s.params(ctx)
	if err != nil {
		return 0, err
	}
	height, err := s.heights.CurrentHeight(ctx)
	if err != nil {
		return 0, err
	}
	return computeYield(*params, *asset, *account, height), nil
}

func (s *service) GetInfo(ctx context.Context) (*ServiceInfo, error) {
	params, err := s.params(ctx)
	if err != nil {
		return nil, err
	}
	height, err := s.heights.CurrentHeight(ctx)
	if err != nil {
		return nil, err
	}
	custodyBalance, err := s.repoManager.Balances().BalanceOf(ctx, s.custody)
	if err != nil {
		return nil, err
	}

	return &ServiceInfo{
		Deployer:       s.deployer,
		CustodyAccount: s.custody,
		CustodyBalance: custodyBalance,
		CurrentHeight:  height,
		Params:         *params,
	}, nil
}

// claim materializes the pending yield and pays it out of custody to the
// asset's current owner. Only unstake reaches it, with the staked flag
// already verified. The account is reset before the payout so the two
// stay consistent within the host transaction.
func (s *service) claim(
	ctx context.Context, asset *domain.Asset, height uint64,
) (uint64, string, error) {
	if !asset.Staked {
		return 0, "", errors.NOT_STAKED.New("asset %d is not staked", asset.Id)
	}
	account, err := s.repoManager.Rewards().Get(ctx, asset.Id)
	if err != nil {
		return 0, "", err
	}
	if account == nil {
		return 0, "", errors.NOT_STAKED.New(
			"no reward account for asset %d", asset.Id,
		)
	}
	params, err := s.params(ctx)
	if err != nil {
		return 0, "", err
	}

	reward := computeYield(*params, *asset, *account, height)
	if err := s.repoManager.Rewards().Upsert(ctx, domain.RewardAccount{
		AssetId:          asset.Id,
		AccumulatedYield: 0,
		LastClaimHeight:  height,
	}); err != nil {
		return 0, "", err
	}

	owner, err := s.repoManager.Owners().OwnerOf(ctx, asset.Id)
	if err != nil {
		return 0, "", err
	}
	if owner == "" {
		fatal := errors.INTERNAL.New(
			"no recorded owner for staked asset %d", asset.Id,
		)
		fatal.Log().Error("claim aborted on owner lookup")
		return 0, "", fatal
	}

	if reward > 0 {
		if err := s.repoManager.Balances().Transfer(
			ctx, s.custody, owner, reward,
		); err != nil {
			return 0, "", errors.TRANSFER_FAILED.Wrap(err)
		}
	}

	if err := s.repoManager.Events().Save(
		ctx, domain.NewYieldClaimed(asset.Id, owner, reward, height),
	); err != nil {
		return 0, "", err
	}
	return reward, owner, nil
}

func (s *service) params(ctx context.Context) (*domain.Params, error) {
	params, err := s.repoManager.Params().Get(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		defaults := domain.DefaultParams()
		return &defaults, nil
	}
	return params, nil
}
