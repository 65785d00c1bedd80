package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

type rewardRepository struct {
	store *badgerhold.Store
}

func NewRewardRepository(config ...interface{}) (domain.RewardRepository, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open reward repository: %s", err)
	}
	return &rewardRepository{store}, nil
}

func (r *rewardRepository) Get(
	ctx context.Context, assetId uint64,
) (*domain.RewardAccount, error) {
	var account domain.RewardAccount
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, assetId, &account)
	} else {
		err = r.store.Get(assetId, &account)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *rewardRepository) Upsert(
	ctx context.Context, account domain.RewardAccount,
) error {
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		upsertFn = func() error {
			return r.store.TxUpsert(tx, account.AssetId, account)
		}
	} else {
		upsertFn = func() error {
			return r.store.Upsert(account.AssetId, account)
		}
	}
	if err := upsertFn(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = upsertFn()
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *rewardRepository) Close() {
	// nolint:all
	r.store.Close()
}
