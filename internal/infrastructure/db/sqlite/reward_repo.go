package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

type rewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(config ...interface{}) (domain.RewardRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open reward repository: invalid config")
	}

	return &rewardRepository{db}, nil
}

func (r *rewardRepository) Get(
	ctx context.Context, assetId uint64,
) (*domain.RewardAccount, error) {
	q := querierFromCtx(ctx, r.db)

	var id, accumulatedYield, lastClaimHeight int64
	err := q.QueryRowContext(
		ctx,
		`SELECT asset_id, accumulated_yield, last_claim_height
		 FROM reward_account WHERE asset_id = ?`,
		int64(assetId),
	).Scan(&id, &accumulatedYield, &lastClaimHeight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward account for asset %d: %w", assetId, err)
	}

	return &domain.RewardAccount{
		AssetId:          uint64(id),
		AccumulatedYield: uint64(accumulatedYield),
		LastClaimHeight:  uint64(lastClaimHeight),
	}, nil
}

func (r *rewardRepository) Upsert(
	ctx context.Context, account domain.RewardAccount,
) error {
	q := querierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO reward_account (asset_id, accumulated_yield, last_claim_height)
		 VALUES (?, ?, ?)
		 ON CONFLICT (asset_id) DO UPDATE SET
			accumulated_yield = excluded.accumulated_yield,
			last_claim_height = excluded.last_claim_height`,
		int64(account.AssetId), int64(account.AccumulatedYield), int64(account.LastClaimHeight),
	); err != nil {
		return fmt.Errorf(
			"failed to upsert reward account for asset %d: %w", account.AssetId, err,
		)
	}
	return nil
}

func (r *rewardRepository) Close() {
	_ = r.db.Close()
}
